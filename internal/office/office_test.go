package office

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/intelligent-office/internal/actuator"
	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

var (
	openCommand  = []float64{12, actuator.NeutralDutyCycle}
	closeCommand = []float64{2, actuator.NeutralDutyCycle}
)

func newTestController() (*Controller, *hal.Simulated) {
	sim := hal.NewSimulated()
	driver := actuator.NewDriver(sim, sim, sim, time.Second, actuator.Endpoints{ClosedDutyCycle: 2, OpenDutyCycle: 12})
	return New(DefaultSettings(), sim, sim, driver), sim
}

// 2024-10-07 is a Monday.
func at(day, hour int) time.Time {
	return time.Date(2024, 10, day, hour, 0, 0, 0, time.UTC)
}

func TestCheckQuadrantOccupancy_Valid(t *testing.T) {
	for _, ch := range model.OccupancyChannels {
		t.Run(ch.String(), func(t *testing.T) {
			c, sim := newTestController()
			sim.Inputs[ch] = true

			occupied, err := c.CheckQuadrantOccupancy(ch)

			require.NoError(t, err)
			assert.True(t, occupied)
			assert.Equal(t, []model.Channel{ch}, sim.Reads)
		})
	}
}

func TestCheckQuadrantOccupancy_InvalidChannel(t *testing.T) {
	invalid := []model.Channel{
		0, -1, 99,
		model.ChannelLightRelay,
		model.ChannelGasSensor,
		model.ChannelBuzzer,
	}

	for _, ch := range invalid {
		t.Run(ch.String(), func(t *testing.T) {
			c, sim := newTestController()

			occupied, err := c.CheckQuadrantOccupancy(ch)

			assert.ErrorIs(t, err, ErrInvalidChannel)
			assert.False(t, occupied)
			assert.Empty(t, sim.Reads)
		})
	}
}

func TestCheckQuadrantOccupancy_HardwareError(t *testing.T) {
	c, sim := newTestController()
	sim.InputErrors[model.ChannelOccupancy2] = errors.New("bus error")

	_, err := c.CheckQuadrantOccupancy(model.ChannelOccupancy2)

	assert.ErrorIs(t, err, hal.ErrHardwareIO)
	assert.NotErrorIs(t, err, ErrInvalidChannel)
}

func TestManageBlinds_OpensDuringBusinessHours(t *testing.T) {
	for day := 7; day <= 11; day++ {
		for hour := 8; hour < 20; hour++ {
			t.Run(fmt.Sprintf("%s %02d:00", at(day, hour).Weekday(), hour), func(t *testing.T) {
				c, sim := newTestController()
				sim.Time = at(day, hour)

				require.NoError(t, c.ManageBlinds())
				assert.True(t, c.State().BlindsOpen)
				assert.Equal(t, openCommand, sim.DutyCycles)

				require.NoError(t, c.ManageBlinds())
				assert.True(t, c.State().BlindsOpen)
				assert.Equal(t, openCommand, sim.DutyCycles, "second call in window must not move the servo")
			})
		}
	}
}

func TestManageBlinds_WeekdayOutsideHours(t *testing.T) {
	for _, hour := range []int{0, 7, 20, 23} {
		t.Run(fmt.Sprintf("%02d:00", hour), func(t *testing.T) {
			c, sim := newTestController()
			sim.Time = at(9, hour)

			require.NoError(t, c.ManageBlinds())
			assert.False(t, c.State().BlindsOpen)
			assert.Empty(t, sim.DutyCycles)
		})
	}
}

func TestManageBlinds_Weekend(t *testing.T) {
	c, sim := newTestController()

	sim.Time = time.Date(2024, 10, 5, 20, 0, 0, 0, time.UTC)
	require.NoError(t, c.ManageBlinds())
	assert.Empty(t, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)

	sim.Time = time.Date(2024, 10, 6, 20, 0, 0, 0, time.UTC)
	require.NoError(t, c.ManageBlinds())
	assert.Empty(t, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)

	for hour := 0; hour < 24; hour++ {
		sim.Time = at(5, hour)
		require.NoError(t, c.ManageBlinds())
		sim.Time = at(6, hour)
		require.NoError(t, c.ManageBlinds())
	}
	assert.Empty(t, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)
}

func TestManageBlinds_WeekendClosesOpenBlinds(t *testing.T) {
	c, sim := newTestController()
	c.state.BlindsOpen = true

	sim.Time = time.Date(2024, 10, 5, 20, 0, 0, 0, time.UTC)
	require.NoError(t, c.ManageBlinds())
	assert.Equal(t, closeCommand, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)

	sim.ResetRecords()
	sim.Time = time.Date(2024, 10, 6, 20, 0, 0, 0, time.UTC)
	require.NoError(t, c.ManageBlinds())
	assert.Empty(t, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)
}

func TestManageBlinds_ClosesAtEndOfDay(t *testing.T) {
	c, sim := newTestController()

	sim.Time = time.Date(2024, 10, 11, 19, 59, 59, 0, time.UTC)
	require.NoError(t, c.ManageBlinds())
	assert.True(t, c.State().BlindsOpen)

	sim.ResetRecords()
	sim.Time = at(11, 20)
	require.NoError(t, c.ManageBlinds())
	assert.False(t, c.State().BlindsOpen)
	assert.Equal(t, closeCommand, sim.DutyCycles)

	sim.ResetRecords()
	sim.Time = at(12, 10)
	require.NoError(t, c.ManageBlinds())
	assert.Empty(t, sim.DutyCycles)
}

func TestManageBlinds_ClockFailure(t *testing.T) {
	c, sim := newTestController()
	sim.ClockError = errors.New("rtc nack")

	err := c.ManageBlinds()

	assert.ErrorIs(t, err, hal.ErrHardwareIO)
	assert.Empty(t, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)
}

func TestManageBlinds_ServoFailureRetriesNextTick(t *testing.T) {
	c, sim := newTestController()
	sim.Time = at(8, 10)
	sim.PWMError = errors.New("pwm fault")

	assert.ErrorIs(t, c.ManageBlinds(), hal.ErrHardwareIO)
	assert.False(t, c.State().BlindsOpen)

	sim.PWMError = nil
	sim.ResetRecords()
	require.NoError(t, c.ManageBlinds())
	assert.True(t, c.State().BlindsOpen)
	assert.Equal(t, openCommand, sim.DutyCycles)
}

func TestManageLightLevel(t *testing.T) {
	tests := []struct {
		name          string
		occupied      bool
		lightOn       bool
		lux           float64
		expectedOn    bool
		expectedWrite []hal.OutputWrite
	}{
		{"dim turns light on", true, false, 499, true, []hal.OutputWrite{{Channel: model.ChannelLightRelay, Level: true}}},
		{"dim with light on is a no-op", true, true, 499, true, nil},
		{"bright turns light off", true, true, 551, false, []hal.OutputWrite{{Channel: model.ChannelLightRelay, Level: false}}},
		{"bright with light off is a no-op", true, false, 551, false, nil},
		{"dead band keeps light on", true, true, 525, true, nil},
		{"dead band keeps light off", true, false, 525, false, nil},
		{"lower band edge keeps light off", true, false, 500, false, nil},
		{"upper band edge keeps light on", true, true, 550, true, nil},
		{"unoccupied forces light off", false, true, 10, false, []hal.OutputWrite{{Channel: model.ChannelLightRelay, Level: false}}},
		{"unoccupied with light off writes nothing", false, false, 10, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sim := newTestController()
			c.state.LightOn = tt.lightOn
			sim.SetOccupied(tt.occupied)
			sim.Lux = tt.lux

			require.NoError(t, c.ManageLightLevel())

			assert.Equal(t, tt.expectedOn, c.State().LightOn)
			assert.Equal(t, tt.expectedWrite, sim.Writes)
		})
	}
}

func TestManageLightLevel_AnyQuadrantCounts(t *testing.T) {
	for _, ch := range model.OccupancyChannels {
		t.Run(ch.String(), func(t *testing.T) {
			c, sim := newTestController()
			sim.Inputs[ch] = true
			sim.Lux = 100

			require.NoError(t, c.ManageLightLevel())
			assert.True(t, c.State().LightOn)
		})
	}
}

func TestManageLightLevel_UnoccupiedSkipsLuxRead(t *testing.T) {
	c, sim := newTestController()
	sim.SetOccupied(false)

	require.NoError(t, c.ManageLightLevel())

	assert.Zero(t, sim.LuxReads)
	assert.Equal(t, model.OccupancyChannels, sim.Reads)
}

func TestManageLightLevel_Idempotent(t *testing.T) {
	c, sim := newTestController()
	sim.SetOccupied(true)
	sim.Lux = 499

	require.NoError(t, c.ManageLightLevel())
	require.NoError(t, c.ManageLightLevel())

	assert.Equal(t, []hal.OutputWrite{{Channel: model.ChannelLightRelay, Level: true}}, sim.Writes)
}

func TestManageLightLevel_Failures(t *testing.T) {
	t.Run("occupancy read", func(t *testing.T) {
		c, sim := newTestController()
		c.state.LightOn = true
		sim.InputErrors[model.ChannelOccupancy1] = errors.New("bus error")

		assert.ErrorIs(t, c.ManageLightLevel(), hal.ErrHardwareIO)
		assert.True(t, c.State().LightOn)
		assert.Empty(t, sim.Writes)
		assert.Zero(t, sim.LuxReads)
	})

	t.Run("lux read", func(t *testing.T) {
		c, sim := newTestController()
		sim.SetOccupied(true)
		sim.LuxError = errors.New("sensor nack")

		assert.ErrorIs(t, c.ManageLightLevel(), hal.ErrHardwareIO)
		assert.False(t, c.State().LightOn)
		assert.Empty(t, sim.Writes)
	})

	t.Run("relay write", func(t *testing.T) {
		c, sim := newTestController()
		sim.SetOccupied(true)
		sim.Lux = 100
		sim.OutputError = errors.New("relay fault")

		assert.ErrorIs(t, c.ManageLightLevel(), hal.ErrHardwareIO)
		assert.False(t, c.State().LightOn)
	})
}

func TestMonitorAirQuality(t *testing.T) {
	tests := []struct {
		name          string
		buzzerOn      bool
		ppm           float64
		expectedOn    bool
		expectedWrite []hal.OutputWrite
	}{
		{"clean air stays quiet", false, 0, false, nil},
		{"above threshold raises alarm", false, 1001, true, []hal.OutputWrite{{Channel: model.ChannelBuzzer, Level: true}}},
		{"above threshold with alarm on is a no-op", true, 2000, true, nil},
		{"below clear threshold silences alarm", true, 799, false, []hal.OutputWrite{{Channel: model.ChannelBuzzer, Level: false}}},
		{"dead band keeps alarm on", true, 900, true, nil},
		{"dead band keeps alarm off", false, 900, false, nil},
		{"on threshold itself does not alarm", false, 1000, false, nil},
		{"clear threshold itself keeps alarm", true, 800, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sim := newTestController()
			c.state.BuzzerOn = tt.buzzerOn
			sim.GasPPM = tt.ppm

			require.NoError(t, c.MonitorAirQuality())

			assert.Equal(t, tt.expectedOn, c.State().BuzzerOn)
			assert.Equal(t, tt.expectedWrite, sim.Writes)
		})
	}
}

func TestMonitorAirQuality_SensorFailure(t *testing.T) {
	c, sim := newTestController()
	c.state.BuzzerOn = true
	sim.GasError = errors.New("open circuit")

	assert.ErrorIs(t, c.MonitorAirQuality(), hal.ErrHardwareIO)
	assert.True(t, c.State().BuzzerOn)
	assert.Empty(t, sim.Writes)
}

func TestTick_FailingRuleDoesNotBlockOthers(t *testing.T) {
	c, sim := newTestController()
	sim.Time = at(7, 9)
	sim.SetOccupied(true)
	sim.Lux = 200
	sim.GasError = errors.New("open circuit")

	report := c.Tick()

	assert.NoError(t, report.Blinds)
	assert.NoError(t, report.Light)
	assert.ErrorIs(t, report.AirQuality, hal.ErrHardwareIO)
	assert.ErrorIs(t, report.Err(), hal.ErrHardwareIO)
	assert.Equal(t, model.ControllerState{BlindsOpen: true, LightOn: true}, report.State)
	assert.Equal(t, openCommand, sim.DutyCycles)
}

func TestTick_SecondTickIsNoop(t *testing.T) {
	c, sim := newTestController()
	sim.Time = at(7, 9)
	sim.SetOccupied(true)
	sim.Lux = 200
	sim.GasPPM = 1500

	first := c.Tick()
	require.NoError(t, first.Err())
	assert.Equal(t, model.ControllerState{BlindsOpen: true, LightOn: true, BuzzerOn: true}, first.State)
	assert.Len(t, sim.Writes, 2)
	assert.Len(t, sim.DutyCycles, 2)

	sim.ResetRecords()
	second := c.Tick()
	require.NoError(t, second.Err())
	assert.Equal(t, first.State, second.State)
	assert.Empty(t, sim.Writes)
	assert.Empty(t, sim.DutyCycles)
}

func TestHome(t *testing.T) {
	c, sim := newTestController()
	c.state = model.ControllerState{BlindsOpen: true, LightOn: true, BuzzerOn: true}

	require.NoError(t, c.Home())

	assert.Equal(t, model.ControllerState{}, c.State())
	assert.Equal(t, closeCommand, sim.DutyCycles)
	assert.Equal(t, []hal.OutputWrite{
		{Channel: model.ChannelLightRelay, Level: false},
		{Channel: model.ChannelBuzzer, Level: false},
	}, sim.Writes)
}

func TestHome_Failure(t *testing.T) {
	c, sim := newTestController()
	sim.OutputError = errors.New("relay fault")

	assert.ErrorIs(t, c.Home(), hal.ErrHardwareIO)
	assert.Equal(t, closeCommand, sim.DutyCycles)
}

func TestHome_ServoFailureKeepsBlindsOpen(t *testing.T) {
	c, sim := newTestController()
	c.state = model.ControllerState{BlindsOpen: true, LightOn: true, BuzzerOn: true}
	sim.PWMError = errors.New("pwm fault")

	assert.ErrorIs(t, c.Home(), hal.ErrHardwareIO)
	assert.Equal(t, model.ControllerState{BlindsOpen: true}, c.State())

	sim.PWMError = nil
	sim.ResetRecords()
	sim.Time = at(5, 20)
	require.NoError(t, c.ManageBlinds())
	assert.Equal(t, closeCommand, sim.DutyCycles)
	assert.False(t, c.State().BlindsOpen)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Schedule = config.Schedule{OpenHour: 7, CloseHour: 18}
	cfg.Light = config.Light{OnBelowLux: 300, OffAboveLux: 400}

	s := SettingsFromConfig(cfg)

	assert.Equal(t, Settings{
		OpenHour:         7,
		CloseHour:        18,
		LightOnBelowLux:  300,
		LightOffAboveLux: 400,
		AlarmOnPPM:       1000,
		AlarmOffPPM:      800,
	}, s)

	d := DefaultSettings()
	assert.Equal(t, 8, d.OpenHour)
	assert.Equal(t, 20, d.CloseHour)
	assert.Equal(t, 500.0, d.LightOnBelowLux)
	assert.Equal(t, 550.0, d.LightOffAboveLux)
}
