// Package hal is the peripheral access layer between the office controller
// and the board: digital I/O, servo PWM, the real-time clock and the ambient
// light and gas sensors. Production and simulated variants implement the same
// interfaces and are chosen by the caller at construction.
package hal

import (
	"errors"
	"fmt"
	"time"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// Operation names carried by IOError.
const (
	OpReadInput   = "read_input"
	OpWriteOutput = "write_output"
	OpSetPWM      = "set_pwm"
	OpReadClock   = "read_clock"
	OpReadLux     = "read_lux"
	OpReadGas     = "read_gas"
)

// ErrHardwareIO matches every IOError via errors.Is.
var ErrHardwareIO = errors.New("hardware io failure")

// IOError reports a failed read or write against the peripheral layer.
type IOError struct {
	Op      string
	Channel model.Channel // zero when the operation has no channel
	Err     error
}

func (e *IOError) Error() string {
	if e.Channel == 0 {
		return fmt.Sprintf("hardware io: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("hardware io: %s %s: %v", e.Op, e.Channel, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrHardwareIO }

type DigitalIO interface {
	ReadDigitalInput(ch model.Channel) (bool, error)
	WriteDigitalOutput(ch model.Channel, level bool) error
}

type PWM interface {
	// SetPWMDutyCycle drives the servo signal at percent (0-100) duty.
	SetPWMDutyCycle(percent float64) error
}

type RealTimeClock interface {
	ReadRealTimeClock() (model.TimeReading, error)
}

type LightSensor interface {
	ReadAmbientLux() (float64, error)
}

type GasSensor interface {
	ReadGasPPM() (float64, error)
}

// Peripherals is the capability set the controller is built on.
type Peripherals interface {
	DigitalIO
	PWM
	RealTimeClock
	LightSensor
}

// Delay waits for an actuator to physically settle.
type Delay interface {
	Settle(d time.Duration)
}

// RealDelay blocks for the full settle time. Use it when driving hardware.
type RealDelay struct{}

func (RealDelay) Settle(d time.Duration) { time.Sleep(d) }

// NoDelay returns immediately.
type NoDelay struct{}

func (NoDelay) Settle(time.Duration) {}
