// Package office holds the rule engine for a single office zone. Each rule
// reads its sensors fresh, compares against the last commanded actuator
// state and only commands an actuator when that state has to change.
//
// A Controller is not safe for concurrent use; callers serialize ticks.
package office

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/datadog"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// ErrInvalidChannel is returned when an occupancy query names a channel
// that is not one of the four quadrant sensors.
var ErrInvalidChannel = errors.New("invalid channel")

type Settings struct {
	OpenHour  int
	CloseHour int

	LightOnBelowLux  float64
	LightOffAboveLux float64

	AlarmOnPPM  float64
	AlarmOffPPM float64
}

func DefaultSettings() Settings {
	return SettingsFromConfig(config.Defaults())
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		OpenHour:         cfg.Schedule.OpenHour,
		CloseHour:        cfg.Schedule.CloseHour,
		LightOnBelowLux:  cfg.Light.OnBelowLux,
		LightOffAboveLux: cfg.Light.OffAboveLux,
		AlarmOnPPM:       cfg.AirQuality.AlarmOnPPM,
		AlarmOffPPM:      cfg.AirQuality.AlarmOffPPM,
	}
}

// Sensors is the read side of the peripheral layer.
type Sensors interface {
	hal.DigitalIO
	hal.RealTimeClock
	hal.LightSensor
}

type Actuators interface {
	OpenBlinds() error
	CloseBlinds() error
	SetLight(on bool) error
	SetBuzzer(on bool) error
}

type Controller struct {
	settings  Settings
	sensors   Sensors
	gas       hal.GasSensor
	actuators Actuators
	state     model.ControllerState
}

// New returns a controller in the safe default state. It does not touch the
// hardware; call Home to bring the actuators in line with that state.
func New(settings Settings, sensors Sensors, gas hal.GasSensor, actuators Actuators) *Controller {
	return &Controller{
		settings:  settings,
		sensors:   sensors,
		gas:       gas,
		actuators: actuators,
	}
}

func (c *Controller) State() model.ControllerState {
	return c.state
}

// Home drives every actuator to its safe position. A tracked flag is only
// cleared once its command went through, so a failed command is retried by
// the next rule evaluation.
func (c *Controller) Home() error {
	blindsErr := c.actuators.CloseBlinds()
	if blindsErr == nil {
		c.state.BlindsOpen = false
	}
	lightErr := c.actuators.SetLight(false)
	if lightErr == nil {
		c.state.LightOn = false
	}
	buzzerErr := c.actuators.SetBuzzer(false)
	if buzzerErr == nil {
		c.state.BuzzerOn = false
	}
	if err := errors.Join(blindsErr, lightErr, buzzerErr); err != nil {
		return fmt.Errorf("home actuators: %w", err)
	}
	log.Info().Msg("Actuators homed to safe state")
	return nil
}

// CheckQuadrantOccupancy does a single read of one quadrant sensor.
func (c *Controller) CheckQuadrantOccupancy(ch model.Channel) (bool, error) {
	if !ch.IsOccupancy() {
		return false, fmt.Errorf("%w: %s", ErrInvalidChannel, ch)
	}
	return c.sensors.ReadDigitalInput(ch)
}

// Occupied reports whether any quadrant registers a presence.
func (c *Controller) Occupied() (bool, error) {
	for _, ch := range model.OccupancyChannels {
		occupied, err := c.CheckQuadrantOccupancy(ch)
		if err != nil {
			return false, err
		}
		if occupied {
			return true, nil
		}
	}
	return false, nil
}

func (c *Controller) withinSchedule(r model.TimeReading) bool {
	return r.IsWeekday() && r.Hour >= c.settings.OpenHour && r.Hour < c.settings.CloseHour
}

// ManageBlinds opens the blinds during weekday business hours and closes
// them otherwise.
func (c *Controller) ManageBlinds() error {
	now, err := c.sensors.ReadRealTimeClock()
	if err != nil {
		return fmt.Errorf("blind schedule: %w", err)
	}
	within := c.withinSchedule(now)

	log.Debug().
		Str("weekday", now.Weekday.String()).
		Int("hour", now.Hour).
		Bool("within_schedule", within).
		Bool("blinds_open", c.state.BlindsOpen).
		Msg("Evaluating blind schedule")

	switch {
	case within && !c.state.BlindsOpen:
		if err := c.actuators.OpenBlinds(); err != nil {
			return fmt.Errorf("open blinds: %w", err)
		}
		c.state.BlindsOpen = true
	case !within && c.state.BlindsOpen:
		if err := c.actuators.CloseBlinds(); err != nil {
			return fmt.Errorf("close blinds: %w", err)
		}
		c.state.BlindsOpen = false
	}
	return nil
}

// ManageLightLevel keeps an occupied room lit when it is dim. Between the on
// and off thresholds the light is left as it is.
func (c *Controller) ManageLightLevel() error {
	occupied, err := c.Occupied()
	if err != nil {
		return fmt.Errorf("light level: %w", err)
	}
	datadog.BoolGauge("zone.occupied", occupied)

	if !occupied {
		log.Debug().Bool("light_on", c.state.LightOn).Msg("Zone unoccupied")
		return c.switchLight(false)
	}

	lux, err := c.sensors.ReadAmbientLux()
	if err != nil {
		return fmt.Errorf("light level: %w", err)
	}
	datadog.Gauge("zone.lux", lux, "component:sensor")

	log.Debug().
		Float64("lux", lux).
		Float64("on_below", c.settings.LightOnBelowLux).
		Float64("off_above", c.settings.LightOffAboveLux).
		Bool("light_on", c.state.LightOn).
		Msg("Evaluating light level")

	switch {
	case lux < c.settings.LightOnBelowLux:
		return c.switchLight(true)
	case lux > c.settings.LightOffAboveLux:
		return c.switchLight(false)
	}
	return nil
}

func (c *Controller) switchLight(on bool) error {
	if c.state.LightOn == on {
		return nil
	}
	if err := c.actuators.SetLight(on); err != nil {
		return fmt.Errorf("switch light: %w", err)
	}
	c.state.LightOn = on
	return nil
}

// MonitorAirQuality sounds the buzzer above the alarm threshold and silences
// it once the reading falls back below the clear threshold.
func (c *Controller) MonitorAirQuality() error {
	ppm, err := c.gas.ReadGasPPM()
	if err != nil {
		return fmt.Errorf("air quality: %w", err)
	}
	datadog.Gauge("zone.gas_ppm", ppm, "component:sensor")

	log.Debug().
		Float64("ppm", ppm).
		Float64("alarm_on", c.settings.AlarmOnPPM).
		Float64("alarm_off", c.settings.AlarmOffPPM).
		Bool("buzzer_on", c.state.BuzzerOn).
		Msg("Evaluating air quality")

	switch {
	case ppm > c.settings.AlarmOnPPM && !c.state.BuzzerOn:
		if err := c.actuators.SetBuzzer(true); err != nil {
			return fmt.Errorf("sound alarm: %w", err)
		}
		c.state.BuzzerOn = true
		log.Warn().Float64("ppm", ppm).Msg("Air quality alarm raised")
	case ppm < c.settings.AlarmOffPPM && c.state.BuzzerOn:
		if err := c.actuators.SetBuzzer(false); err != nil {
			return fmt.Errorf("silence alarm: %w", err)
		}
		c.state.BuzzerOn = false
		log.Info().Float64("ppm", ppm).Msg("Air quality alarm cleared")
	}
	return nil
}
