//go:build linux

package hal

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/i2c-dev.h
const (
	i2cRDWR = 0x0707
	i2cMRD  = 0x0001
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// I2CBus is an open /dev/i2c-N adapter.
type I2CBus struct {
	f *os.File
}

func OpenI2CBus(path string) (*I2CBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", path, err)
	}
	return &I2CBus{f: f}, nil
}

// Device returns a handle for the peripheral at the 7-bit address addr.
func (b *I2CBus) Device(addr uint16) I2CDevice {
	return &i2cDevice{bus: b, addr: addr}
}

func (b *I2CBus) Close() error {
	return b.f.Close()
}

type i2cDevice struct {
	bus  *I2CBus
	addr uint16
}

// Tx issues the write and read as one I2C_RDWR ioctl so the read follows a
// repeated start, which the DS3231 and VEML7700 both require.
func (d *i2cDevice) Tx(w, r []byte) error {
	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, flags: i2cMRD, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return nil
	}

	data := i2cRdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), i2cRDWR, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return fmt.Errorf("i2c transfer to 0x%02x: %w", d.addr, errno)
	}
	return nil
}
