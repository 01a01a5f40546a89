package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

type GPIO struct {
	// infrared quadrant sensors
	Occupancy1 *int `json:"occupancy_1"`
	Occupancy2 *int `json:"occupancy_2"`
	Occupancy3 *int `json:"occupancy_3"`
	Occupancy4 *int `json:"occupancy_4"`

	// actuators
	LightRelay *int `json:"light_relay"`
	Buzzer     *int `json:"buzzer"`

	// air quality
	GasSensor *int `json:"gas_sensor"`
}

type Servo struct {
	PWMChip         int     `json:"pwm_chip"`
	PWMChannel      int     `json:"pwm_channel"`
	FrequencyHz     int     `json:"frequency_hz"`
	ClosedDutyCycle float64 `json:"closed_duty_cycle"`
	OpenDutyCycle   float64 `json:"open_duty_cycle"`
	SettleMillis    int     `json:"settle_ms"`
}

type Schedule struct {
	OpenHour  int `json:"open_hour"`
	CloseHour int `json:"close_hour"`
}

type Light struct {
	OnBelowLux  float64 `json:"on_below_lux"`
	OffAboveLux float64 `json:"off_above_lux"`
}

type AirQuality struct {
	AlarmOnPPM        float64 `json:"alarm_on_ppm"`
	AlarmOffPPM       float64 `json:"alarm_off_ppm"`
	GasActiveLow      bool    `json:"gas_active_low"`
	ComparatorTripPPM float64 `json:"comparator_trip_ppm"`
}

type Config struct {
	ConfigFile string        `json:"-"`
	LogLevel   zerolog.Level `json:"-"`
	Simulate   bool          `json:"-"`

	LogFile  string `json:"log_file"`
	SafeMode bool   `json:"safe_mode"`

	GPIOChip string `json:"gpio_chip"`
	GPIO     GPIO   `json:"gpio"`
	Servo    Servo  `json:"servo"`

	I2CBus             string `json:"i2c_bus"`
	RTCAddress         int    `json:"rtc_address"`
	LightSensorAddress int    `json:"light_sensor_address"`
	UseSystemClock     bool   `json:"use_system_clock"`

	Schedule   Schedule   `json:"schedule"`
	Light      Light      `json:"light"`
	AirQuality AirQuality `json:"air_quality"`

	PollIntervalSeconds int `json:"poll_interval_seconds"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	BootScriptFilePath string `json:"boot_script_path"`
	OSServicePath      string `json:"os_service_path"`
	MainServicePath    string `json:"main_service_path"`
}

// Defaults returns a Config holding every tunable at its shipped value.
// GPIO pins have no defaults and must come from the config file.
func Defaults() Config {
	return Config{
		GPIOChip: "gpiochip0",
		Servo: Servo{
			FrequencyHz:     50,
			ClosedDutyCycle: 2,
			OpenDutyCycle:   12,
			SettleMillis:    1000,
		},
		I2CBus:             "/dev/i2c-1",
		RTCAddress:         0x68,
		LightSensorAddress: 0x10,
		Schedule:           Schedule{OpenHour: 8, CloseHour: 20},
		Light:              Light{OnBelowLux: 500, OffAboveLux: 550},
		AirQuality: AirQuality{
			AlarmOnPPM:        1000,
			AlarmOffPPM:       800,
			GasActiveLow:      true,
			ComparatorTripPPM: 2000,
		},
		PollIntervalSeconds: 30,
		DDAgentAddr:         "127.0.0.1:8125",
		DDNamespace:         "office.",
		BootScriptFilePath:  "/usr/local/bin/office-gpio-init.sh",
		OSServicePath:       "/etc/systemd/system/office-gpio-init.service",
		MainServicePath:     "/etc/systemd/system/office-controller.service",
	}
}

func Load() Config {
	var configFile, logLevel string
	var simulate bool

	flag.StringVar(&configFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&simulate, "simulate", false, "Run against simulated peripherals instead of hardware")
	flag.Parse()

	cfg := FromFile(configFile)
	cfg.LogLevel = ParseLogLevel(logLevel)
	cfg.Simulate = simulate
	return cfg
}

// FromFile reads and validates a config file, panicking on any problem.
func FromFile(path string) Config {
	file, err := os.Open(path)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		panic("Failed to parse config file: " + err.Error())
	}
	cfg.ConfigFile = path

	cfg.validate()
	return cfg
}

// Decode overlays the JSON document in r on top of Defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 30
	}
	return cfg, nil
}

func ParseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ChannelPins maps each logical channel to its GPIO line offset.
// Only valid after validate has passed.
func (cfg Config) ChannelPins() map[model.Channel]int {
	return map[model.Channel]int{
		model.ChannelOccupancy1: *cfg.GPIO.Occupancy1,
		model.ChannelOccupancy2: *cfg.GPIO.Occupancy2,
		model.ChannelOccupancy3: *cfg.GPIO.Occupancy3,
		model.ChannelOccupancy4: *cfg.GPIO.Occupancy4,
		model.ChannelLightRelay: *cfg.GPIO.LightRelay,
		model.ChannelBuzzer:     *cfg.GPIO.Buzzer,
		model.ChannelGasSensor:  *cfg.GPIO.GasSensor,
	}
}

// PullUpChannels lists the inputs that idle high. An active-low gas
// comparator needs a pull-up so an unplugged module reads as clear.
func (cfg Config) PullUpChannels() map[model.Channel]bool {
	pullUp := map[model.Channel]bool{}
	if cfg.AirQuality.GasActiveLow {
		pullUp[model.ChannelGasSensor] = true
	}
	return pullUp
}

func (cfg Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalSeconds) * time.Second
}

func (cfg Config) SettleDelay() time.Duration {
	return time.Duration(cfg.Servo.SettleMillis) * time.Millisecond
}

func (cfg *Config) validate() {
	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
		problems      []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := field.Elem().Int()
		if other, exists := usedPins[int(pin)]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[int(pin)] = fieldName
		}
	}

	if len(missingFields) > 0 {
		panic("Missing required GPIO config fields: " + strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}

	if cfg.Schedule.OpenHour < 0 || cfg.Schedule.CloseHour > 24 || cfg.Schedule.OpenHour >= cfg.Schedule.CloseHour {
		problems = append(problems, fmt.Sprintf("schedule window [%d,%d) is invalid", cfg.Schedule.OpenHour, cfg.Schedule.CloseHour))
	}
	if cfg.Light.OnBelowLux > cfg.Light.OffAboveLux {
		problems = append(problems, "light.on_below_lux must not exceed light.off_above_lux")
	}
	if cfg.AirQuality.AlarmOffPPM > cfg.AirQuality.AlarmOnPPM {
		problems = append(problems, "air_quality.alarm_off_ppm must not exceed air_quality.alarm_on_ppm")
	}
	for name, duty := range map[string]float64{
		"servo.closed_duty_cycle": cfg.Servo.ClosedDutyCycle,
		"servo.open_duty_cycle":   cfg.Servo.OpenDutyCycle,
	} {
		if duty < 0 || duty > 100 {
			problems = append(problems, fmt.Sprintf("%s %.1f is outside [0,100]", name, duty))
		}
	}
	if cfg.Servo.FrequencyHz <= 0 {
		problems = append(problems, "servo.frequency_hz must be positive")
	}

	if len(problems) > 0 {
		panic("Invalid config: " + strings.Join(problems, "; "))
	}
}
