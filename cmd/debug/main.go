package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/thatsimonsguy/intelligent-office/internal/actuator"
	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/hal"
	"github.com/thatsimonsguy/intelligent-office/internal/logging"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
	"github.com/thatsimonsguy/intelligent-office/internal/office"
	"github.com/thatsimonsguy/intelligent-office/system/startup"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var configFile, command, state, binary string
	var channel int
	var duty float64
	var simulate bool
	flag.StringVar(&configFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&command, "cmd", "", "Command to run: occupancy, blinds, light, buzzer, servo, tick, boot-script, run-boot-script, install-service")
	flag.IntVar(&channel, "channel", int(model.ChannelOccupancy1), "Occupancy channel (1-4) for the occupancy command")
	flag.StringVar(&state, "state", "", "Target state: open/closed for blinds, on/off for light and buzzer")
	flag.Float64Var(&duty, "duty", 0, "Servo duty cycle percent for the servo command")
	flag.StringVar(&binary, "binary", "/usr/local/bin/office-controller", "Controller binary path for install-service")
	flag.BoolVar(&simulate, "simulate", false, "Use simulated peripherals")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of office-debug:")
		fmt.Println("  -config-file string\tPath to the controller config file (default 'config.json')")
		fmt.Println("  -cmd string\tCommand to run: occupancy, blinds, light, buzzer, servo, tick, boot-script, run-boot-script, install-service")
		fmt.Println("  -channel int\tOccupancy channel (1-4)")
		fmt.Println("  -state string\topen/closed or on/off")
		fmt.Println("  -duty float\tServo duty cycle percent")
		fmt.Println("  -binary string\tController binary path for install-service")
		fmt.Println("  -simulate\tUse simulated peripherals")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	cfg := config.FromFile(configFile)
	cfg.Simulate = simulate
	logging.Init(config.ParseLogLevel("warn"), "")

	var err error
	switch command {
	case "boot-script":
		err = startup.WriteStartupScript(cfg)
	case "run-boot-script":
		err = startup.RunStartupScript(cfg)
	case "install-service":
		err = errors.Join(
			startup.WriteStartupScript(cfg),
			startup.InstallStartupService(cfg),
			startup.InstallControllerService(cfg, binary),
		)
	default:
		err = withHardware(cfg, func(ctrl *office.Controller, driver *actuator.Driver) error {
			return runHardwareCommand(os.Stdout, ctrl, driver, command, model.Channel(channel), state, duty)
		})
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
	fmt.Printf("Command %s completed successfully\n", command)
}

func withHardware(cfg config.Config, fn func(*office.Controller, *actuator.Driver) error) error {
	hw, err := hal.Open(cfg)
	if err != nil {
		return err
	}
	defer hw.Close()

	driver := actuator.NewDriver(hw.Peripherals, hw.Peripherals, hw.Delay, cfg.SettleDelay(), actuator.Endpoints{
		ClosedDutyCycle: cfg.Servo.ClosedDutyCycle,
		OpenDutyCycle:   cfg.Servo.OpenDutyCycle,
	})
	driver.SetSafeMode(cfg.SafeMode)

	return fn(office.New(office.SettingsFromConfig(cfg), hw.Peripherals, hw.Gas, driver), driver)
}

func runHardwareCommand(out io.Writer, ctrl *office.Controller, driver *actuator.Driver, command string, channel model.Channel, state string, duty float64) error {
	switch command {
	case "occupancy":
		occupied, err := ctrl.CheckQuadrantOccupancy(channel)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s occupied: %v\n", channel, occupied)
		return nil

	case "blinds":
		switch state {
		case "open":
			return driver.OpenBlinds()
		case "closed":
			return driver.CloseBlinds()
		}
		return fmt.Errorf("blinds state must be open or closed, got %q", state)

	case "light", "buzzer":
		on, err := parseOnOff(state)
		if err != nil {
			return err
		}
		if command == "light" {
			return driver.SetLight(on)
		}
		return driver.SetBuzzer(on)

	case "servo":
		return driver.ChangeServoDutyCycle(duty)

	case "tick":
		report := ctrl.Tick()
		fmt.Fprintf(out, "blinds_open=%v light_on=%v buzzer_on=%v\n",
			report.State.BlindsOpen, report.State.LightOn, report.State.BuzzerOn)
		return report.Err()
	}

	return fmt.Errorf("invalid command %q", command)
}

func parseOnOff(state string) (bool, error) {
	switch state {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("state must be on or off, got %q", state)
}
