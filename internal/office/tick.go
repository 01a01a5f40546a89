package office

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/intelligent-office/internal/datadog"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// TickReport carries the outcome of each rule in one tick.
type TickReport struct {
	Blinds     error
	Light      error
	AirQuality error
	State      model.ControllerState
}

func (r TickReport) Err() error {
	return errors.Join(r.Blinds, r.Light, r.AirQuality)
}

// Tick runs every rule once. A failing rule is logged and reported but never
// stops the others.
func (c *Controller) Tick() TickReport {
	report := TickReport{
		Blinds:     c.runRule("blinds", c.ManageBlinds),
		Light:      c.runRule("light", c.ManageLightLevel),
		AirQuality: c.runRule("air_quality", c.MonitorAirQuality),
	}
	report.State = c.state

	datadog.BoolGauge("blinds.open", c.state.BlindsOpen)
	datadog.BoolGauge("light.on", c.state.LightOn)
	datadog.BoolGauge("buzzer.on", c.state.BuzzerOn)

	return report
}

func (c *Controller) runRule(name string, rule func() error) error {
	err := rule()
	if err != nil {
		log.Error().Err(err).Str("rule", name).Msg("Rule failed; skipping for this tick")
		datadog.Incr("rule.failure", "rule:"+name)
	}
	return err
}
