package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thatsimonsguy/intelligent-office/internal/actuator"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
	"github.com/thatsimonsguy/intelligent-office/internal/office"
)

func TestRunLoop_TicksUntilSignal(t *testing.T) {
	sim := hal.NewSimulated()
	sim.Time = time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC)
	sim.SetOccupied(true)
	sim.Lux = 120

	driver := actuator.NewDriver(sim, sim, hal.NoDelay{}, time.Second, actuator.Endpoints{ClosedDutyCycle: 2, OpenDutyCycle: 12})
	ctrl := office.New(office.DefaultSettings(), sim, sim, driver)

	tick := make(chan time.Time, 3)
	sig := make(chan os.Signal, 1)
	tick <- time.Now()
	tick <- time.Now()
	tick <- time.Now()

	done := make(chan int)
	go func() { done <- runLoop(ctrl, tick, sig) }()

	assert.Eventually(t, func() bool { return len(tick) == 0 }, time.Second, 5*time.Millisecond)
	sig <- syscall.SIGTERM

	select {
	case n := <-done:
		assert.Equal(t, 3, n)
	case <-time.After(time.Second):
		t.Fatal("runLoop did not return after signal")
	}

	assert.Equal(t, model.ControllerState{BlindsOpen: true, LightOn: true}, ctrl.State())
	assert.Equal(t, []float64{12, actuator.NeutralDutyCycle}, sim.DutyCycles)
	assert.Equal(t, []hal.OutputWrite{{Channel: model.ChannelLightRelay, Level: true}}, sim.Writes)
}
