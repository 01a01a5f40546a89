package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/intelligent-office/internal/actuator"
	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/datadog"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/logging"
	"github.com/thatsimonsguy/intelligent-office/internal/office"
	"github.com/thatsimonsguy/intelligent-office/system/shutdown"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("config_file", cfg.ConfigFile).
		Bool("simulate", cfg.Simulate).
		Int("poll_interval_seconds", cfg.PollIntervalSeconds).
		Msg("Starting office controller")

	datadog.InitMetrics(cfg)

	hw, err := hal.Open(cfg)
	if err != nil {
		shutdown.ShutdownWithError(err, "Failed to open peripherals", nil)
		return
	}

	driver := actuator.NewDriver(hw.Peripherals, hw.Peripherals, hw.Delay, cfg.SettleDelay(), actuator.Endpoints{
		ClosedDutyCycle: cfg.Servo.ClosedDutyCycle,
		OpenDutyCycle:   cfg.Servo.OpenDutyCycle,
	})
	driver.SetSafeMode(cfg.SafeMode)
	if cfg.SafeMode {
		log.Warn().Msg("SAFE MODE ENABLED - actuator writes are disabled")
	}

	ctrl := office.New(office.SettingsFromConfig(cfg), hw.Peripherals, hw.Gas, driver)
	if err := ctrl.Home(); err != nil {
		log.Error().Err(err).Msg("Failed to home actuators; continuing with safe defaults")
	}

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runLoop(ctrl, ticker.C, sigCh)

	datadog.Close()
	shutdown.Shutdown(driver, hw)
}

type tickRunner interface {
	Tick() office.TickReport
}

// runLoop runs one tick per timer fire until a signal arrives. Ticks never
// overlap because they all run on this goroutine.
func runLoop(ctrl tickRunner, tick <-chan time.Time, sig <-chan os.Signal) int {
	ticks := 0
	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Int("ticks", ticks).Msg("Received signal, shutting down")
			return ticks

		case <-tick:
			ticks++
			report := ctrl.Tick()
			log.Debug().
				Int("tick", ticks).
				Bool("blinds_open", report.State.BlindsOpen).
				Bool("light_on", report.State.LightOn).
				Bool("buzzer_on", report.State.BuzzerOn).
				AnErr("error", report.Err()).
				Msg("Tick complete")
		}
	}
}
