package hal

import (
	"time"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// OutputWrite is one recorded digital output write.
type OutputWrite struct {
	Channel model.Channel
	Level   bool
}

// Simulated is an in-memory board. Sensor values are set directly on the
// struct and every actuator call is recorded for inspection. It also
// implements GasSensor and Delay; Settle records the duration and returns.
type Simulated struct {
	Inputs map[model.Channel]bool
	Time   time.Time // zero means time.Now()
	Lux    float64
	GasPPM float64

	// Error injection. InputErrors applies per channel.
	InputErrors map[model.Channel]error
	OutputError error
	PWMError    error
	ClockError  error
	LuxError    error
	GasError    error

	Reads      []model.Channel
	Writes     []OutputWrite
	Outputs    map[model.Channel]bool
	DutyCycles []float64
	Settles    []time.Duration
	ClockReads int
	LuxReads   int
}

func NewSimulated() *Simulated {
	return &Simulated{
		Inputs:      map[model.Channel]bool{},
		InputErrors: map[model.Channel]error{},
		Outputs:     map[model.Channel]bool{},
	}
}

func (s *Simulated) ReadDigitalInput(ch model.Channel) (bool, error) {
	s.Reads = append(s.Reads, ch)
	if err := s.InputErrors[ch]; err != nil {
		return false, &IOError{Op: OpReadInput, Channel: ch, Err: err}
	}
	return s.Inputs[ch], nil
}

func (s *Simulated) WriteDigitalOutput(ch model.Channel, level bool) error {
	s.Writes = append(s.Writes, OutputWrite{Channel: ch, Level: level})
	if s.OutputError != nil {
		return &IOError{Op: OpWriteOutput, Channel: ch, Err: s.OutputError}
	}
	s.Outputs[ch] = level
	return nil
}

func (s *Simulated) SetPWMDutyCycle(percent float64) error {
	s.DutyCycles = append(s.DutyCycles, percent)
	if s.PWMError != nil {
		return &IOError{Op: OpSetPWM, Err: s.PWMError}
	}
	return nil
}

func (s *Simulated) ReadRealTimeClock() (model.TimeReading, error) {
	s.ClockReads++
	if s.ClockError != nil {
		return model.TimeReading{}, &IOError{Op: OpReadClock, Err: s.ClockError}
	}
	if s.Time.IsZero() {
		return model.NewTimeReading(time.Now()), nil
	}
	return model.NewTimeReading(s.Time), nil
}

func (s *Simulated) ReadAmbientLux() (float64, error) {
	s.LuxReads++
	if s.LuxError != nil {
		return 0, &IOError{Op: OpReadLux, Err: s.LuxError}
	}
	return s.Lux, nil
}

func (s *Simulated) ReadGasPPM() (float64, error) {
	if s.GasError != nil {
		return 0, &IOError{Op: OpReadGas, Channel: model.ChannelGasSensor, Err: s.GasError}
	}
	return s.GasPPM, nil
}

func (s *Simulated) Settle(d time.Duration) {
	s.Settles = append(s.Settles, d)
}

// SetOccupied marks every occupancy quadrant as occupied or empty.
func (s *Simulated) SetOccupied(occupied bool) {
	for _, ch := range model.OccupancyChannels {
		s.Inputs[ch] = occupied
	}
}

// ResetRecords clears recorded calls but keeps sensor values.
func (s *Simulated) ResetRecords() {
	s.Reads = nil
	s.Writes = nil
	s.DutyCycles = nil
	s.Settles = nil
	s.ClockReads = 0
	s.LuxReads = 0
}
