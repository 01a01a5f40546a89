package hal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const sysfsPWMRoot = "/sys/class/pwm"

// SysfsPWM drives one hardware PWM channel through /sys/class/pwm.
type SysfsPWM struct {
	chipDir  string
	channel  int
	dir      string
	periodNs int64
}

// NewSysfsPWM exports channel on pwmchipN, sets the period for freqHz and
// enables the output at zero duty.
func NewSysfsPWM(chip, channel, freqHz int) (*SysfsPWM, error) {
	return openSysfsPWM(filepath.Join(sysfsPWMRoot, fmt.Sprintf("pwmchip%d", chip)), channel, freqHz)
}

func openSysfsPWM(chipDir string, channel, freqHz int) (*SysfsPWM, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("pwm frequency must be positive, got %d", freqHz)
	}

	p := &SysfsPWM{
		chipDir:  chipDir,
		channel:  channel,
		dir:      filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel)),
		periodNs: int64(time.Second) / int64(freqHz),
	}

	if _, err := os.Stat(p.dir); errors.Is(err, os.ErrNotExist) {
		if err := writeSysfs(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm%d: %w", channel, err)
		}
	}

	// duty_cycle must never exceed period, so zero it before changing period
	if err := p.write("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := p.write("period", p.periodNs); err != nil {
		return nil, err
	}
	if err := p.write("enable", 1); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SysfsPWM) SetPWMDutyCycle(percent float64) error {
	if percent < 0 || percent > 100 {
		return &IOError{Op: OpSetPWM, Err: fmt.Errorf("duty cycle %.2f%% outside [0,100]", percent)}
	}
	duty := int64(float64(p.periodNs) * percent / 100)
	if err := p.write("duty_cycle", duty); err != nil {
		return &IOError{Op: OpSetPWM, Err: err}
	}
	return nil
}

func (p *SysfsPWM) Close() error {
	return errors.Join(
		p.write("duty_cycle", 0),
		p.write("enable", 0),
		writeSysfs(filepath.Join(p.chipDir, "unexport"), strconv.Itoa(p.channel)),
	)
}

func (p *SysfsPWM) write(attr string, v int64) error {
	return writeSysfs(filepath.Join(p.dir, attr), strconv.FormatInt(v, 10))
}

func writeSysfs(path, value string) error {
	return os.WriteFile(path, []byte(value), 0644)
}
