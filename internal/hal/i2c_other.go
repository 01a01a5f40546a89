//go:build !linux

package hal

import "errors"

// I2CBus is not available on non-Linux platforms.
type I2CBus struct{}

func OpenI2CBus(string) (*I2CBus, error) {
	return nil, errors.New("i2c: not supported on this platform (requires Linux)")
}

func (b *I2CBus) Device(uint16) I2CDevice {
	return nil
}

func (b *I2CBus) Close() error {
	return nil
}
