package actuator

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/intelligent-office/internal/datadog"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// NeutralDutyCycle is a low signal: the servo holds position without
// jittering.
const NeutralDutyCycle = 0.0

// Endpoints are the servo duty cycles for the two blind positions.
type Endpoints struct {
	ClosedDutyCycle float64
	OpenDutyCycle   float64
}

// Driver turns logical actuator commands into hardware primitives.
type Driver struct {
	io        hal.DigitalIO
	pwm       hal.PWM
	delay     hal.Delay
	settle    time.Duration
	endpoints Endpoints
	safeMode  bool
}

func NewDriver(io hal.DigitalIO, pwm hal.PWM, delay hal.Delay, settle time.Duration, endpoints Endpoints) *Driver {
	return &Driver{
		io:        io,
		pwm:       pwm,
		delay:     delay,
		settle:    settle,
		endpoints: endpoints,
	}
}

// SetSafeMode suppresses every hardware write while enabled.
func (d *Driver) SetSafeMode(enabled bool) {
	d.safeMode = enabled
}

// ChangeServoDutyCycle commands duty, waits for the servo to settle, then
// drops the signal to neutral. The neutral write happens even when the
// first write fails.
func (d *Driver) ChangeServoDutyCycle(duty float64) (err error) {
	if d.safeMode {
		log.Warn().Float64("duty_cycle", duty).Msg("Safe mode: skipping servo command")
		return nil
	}

	defer func() {
		if rerr := d.pwm.SetPWMDutyCycle(NeutralDutyCycle); rerr != nil {
			log.Error().Err(rerr).Msg("Failed to release servo to neutral")
			err = errors.Join(err, rerr)
		}
	}()

	if err := d.pwm.SetPWMDutyCycle(duty); err != nil {
		return err
	}
	d.delay.Settle(d.settle)

	log.Debug().Float64("duty_cycle", duty).Dur("settle", d.settle).Msg("Servo moved")
	datadog.Incr("actuator.command", "actuator:servo")
	return nil
}

func (d *Driver) OpenBlinds() error {
	log.Info().Str("actuator", "blinds").Str("state", "open").Float64("duty_cycle", d.endpoints.OpenDutyCycle).Msg("Opening blinds")
	return d.ChangeServoDutyCycle(d.endpoints.OpenDutyCycle)
}

func (d *Driver) CloseBlinds() error {
	log.Info().Str("actuator", "blinds").Str("state", "closed").Float64("duty_cycle", d.endpoints.ClosedDutyCycle).Msg("Closing blinds")
	return d.ChangeServoDutyCycle(d.endpoints.ClosedDutyCycle)
}

func (d *Driver) SetLight(on bool) error {
	return d.setOutput("light", model.ChannelLightRelay, on)
}

func (d *Driver) SetBuzzer(on bool) error {
	return d.setOutput("buzzer", model.ChannelBuzzer, on)
}

func (d *Driver) setOutput(name string, ch model.Channel, on bool) error {
	if d.safeMode {
		log.Warn().Str("actuator", name).Bool("on", on).Msg("Safe mode: skipping output write")
		return nil
	}
	if err := d.io.WriteDigitalOutput(ch, on); err != nil {
		return err
	}
	log.Info().Str("actuator", name).Bool("on", on).Msg("Output switched")
	datadog.Incr("actuator.command", "actuator:"+name)
	return nil
}

// SafeState closes the blinds and switches the light and buzzer off. Every
// step is attempted even if an earlier one fails.
func (d *Driver) SafeState() error {
	return errors.Join(
		d.SetBuzzer(false),
		d.SetLight(false),
		d.CloseBlinds(),
	)
}
