//go:build !linux

package hal

import (
	"errors"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// GPIO is not available on non-Linux platforms.
type GPIO struct{}

func NewGPIO(string, map[model.Channel]int, map[model.Channel]bool) (*GPIO, error) {
	return nil, errUnsupported
}

func (g *GPIO) ReadDigitalInput(ch model.Channel) (bool, error) {
	return false, &IOError{Op: OpReadInput, Channel: ch, Err: errUnsupported}
}

func (g *GPIO) WriteDigitalOutput(ch model.Channel, level bool) error {
	return &IOError{Op: OpWriteOutput, Channel: ch, Err: errUnsupported}
}

func (g *GPIO) Close() error {
	return nil
}
