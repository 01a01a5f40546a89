package hal

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// Board is the production Peripherals: GPIO lines, the servo PWM channel
// and the I2C clock and light sensor.
type Board struct {
	gpio  *GPIO
	pwm   *SysfsPWM
	bus   *I2CBus
	clock RealTimeClock
	light *VEML7700
}

// OpenBoard acquires every peripheral named in cfg. Anything acquired
// before a failure is released again.
func OpenBoard(cfg config.Config) (b *Board, err error) {
	b = &Board{}
	defer func() {
		if err != nil {
			b.Close()
			b = nil
		}
	}()

	if b.gpio, err = NewGPIO(cfg.GPIOChip, cfg.ChannelPins(), cfg.PullUpChannels()); err != nil {
		return b, err
	}
	if b.pwm, err = NewSysfsPWM(cfg.Servo.PWMChip, cfg.Servo.PWMChannel, cfg.Servo.FrequencyHz); err != nil {
		return b, fmt.Errorf("init servo pwm: %w", err)
	}
	if b.bus, err = OpenI2CBus(cfg.I2CBus); err != nil {
		return b, err
	}

	if cfg.UseSystemClock {
		b.clock = SystemClock{}
	} else {
		b.clock = NewDS3231(b.bus.Device(uint16(cfg.RTCAddress)))
	}

	b.light = NewVEML7700(b.bus.Device(uint16(cfg.LightSensorAddress)))
	if err = b.light.Configure(); err != nil {
		return b, fmt.Errorf("configure light sensor: %w", err)
	}

	log.Info().
		Str("gpio_chip", cfg.GPIOChip).
		Int("pwm_chip", cfg.Servo.PWMChip).
		Int("pwm_channel", cfg.Servo.PWMChannel).
		Str("i2c_bus", cfg.I2CBus).
		Bool("system_clock", cfg.UseSystemClock).
		Msg("Board peripherals opened")

	return b, nil
}

func (b *Board) ReadDigitalInput(ch model.Channel) (bool, error) {
	return b.gpio.ReadDigitalInput(ch)
}

func (b *Board) WriteDigitalOutput(ch model.Channel, level bool) error {
	return b.gpio.WriteDigitalOutput(ch, level)
}

func (b *Board) SetPWMDutyCycle(percent float64) error {
	return b.pwm.SetPWMDutyCycle(percent)
}

func (b *Board) ReadRealTimeClock() (model.TimeReading, error) {
	return b.clock.ReadRealTimeClock()
}

func (b *Board) ReadAmbientLux() (float64, error) {
	return b.light.ReadAmbientLux()
}

func (b *Board) Close() error {
	var errs []error
	if b.pwm != nil {
		if err := b.pwm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pwm: %w", err))
		}
	}
	if b.gpio != nil {
		if err := b.gpio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpio: %w", err))
		}
	}
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c: %w", err))
		}
	}
	return errors.Join(errs...)
}
