//go:build linux

package hal

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

var errUnmapped = errors.New("channel not mapped to a gpio line")

// GPIO drives the office's digital channels through the Linux GPIO
// character device.
type GPIO struct {
	chip   *gpiocdev.Chip
	lines  map[model.Channel]*gpiocdev.Line
	pullUp map[model.Channel]bool
}

// NewGPIO requests every channel in pins on chipName. Sensor channels are
// inputs with pull-down, or pull-up when listed in pullUp. Actuator channels
// are outputs driven low.
func NewGPIO(chipName string, pins map[model.Channel]int, pullUp map[model.Channel]bool) (*GPIO, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	g := &GPIO{chip: chip, lines: map[model.Channel]*gpiocdev.Line{}, pullUp: pullUp}

	channels := make([]model.Channel, 0, len(pins))
	for ch := range pins {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	for _, ch := range channels {
		offset := pins[ch]
		var line *gpiocdev.Line
		if isOutput(ch) {
			line, err = chip.RequestLine(offset, gpiocdev.AsOutput(0))
		} else {
			line, err = chip.RequestLine(offset, gpiocdev.AsInput, g.inputBias(ch))
		}
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", ch, offset, err)
		}
		g.lines[ch] = line
		log.Debug().Str("channel", ch.String()).Int("offset", offset).Bool("output", isOutput(ch)).Msg("Requested GPIO line")
	}

	return g, nil
}

func (g *GPIO) inputBias(ch model.Channel) gpiocdev.LineBias {
	if g.pullUp[ch] {
		return gpiocdev.WithPullUp
	}
	return gpiocdev.WithPullDown
}

func isOutput(ch model.Channel) bool {
	return ch == model.ChannelLightRelay || ch == model.ChannelBuzzer
}

func (g *GPIO) ReadDigitalInput(ch model.Channel) (bool, error) {
	line, ok := g.lines[ch]
	if !ok {
		return false, &IOError{Op: OpReadInput, Channel: ch, Err: errUnmapped}
	}
	v, err := line.Value()
	if err != nil {
		return false, &IOError{Op: OpReadInput, Channel: ch, Err: err}
	}
	return v != 0, nil
}

func (g *GPIO) WriteDigitalOutput(ch model.Channel, level bool) error {
	line, ok := g.lines[ch]
	if !ok || !isOutput(ch) {
		return &IOError{Op: OpWriteOutput, Channel: ch, Err: errUnmapped}
	}
	v := 0
	if level {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return &IOError{Op: OpWriteOutput, Channel: ch, Err: err}
	}
	return nil
}

// Close returns every line to an input with the same bias the boot script
// applies, and releases the chip.
func (g *GPIO) Close() error {
	var errs []error
	for ch, line := range g.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, g.inputBias(ch)); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", ch, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", ch, err))
		}
	}
	g.lines = map[model.Channel]*gpiocdev.Line{}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		g.chip = nil
	}
	return errors.Join(errs...)
}
