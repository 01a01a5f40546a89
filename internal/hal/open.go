package hal

import (
	"github.com/thatsimonsguy/intelligent-office/internal/config"
)

// Hardware bundles the collaborators the controller is built from.
type Hardware struct {
	Peripherals Peripherals
	Gas         GasSensor
	Delay       Delay

	// Simulated is set when running without a board.
	Simulated *Simulated

	board *Board
}

// Open selects the simulated or real peripherals according to cfg.Simulate.
func Open(cfg config.Config) (*Hardware, error) {
	if cfg.Simulate {
		sim := NewSimulated()
		return &Hardware{Peripherals: sim, Gas: sim, Delay: NoDelay{}, Simulated: sim}, nil
	}

	board, err := OpenBoard(cfg)
	if err != nil {
		return nil, err
	}
	return &Hardware{
		Peripherals: board,
		Gas: ComparatorGasSensor{
			IO:        board,
			ActiveLow: cfg.AirQuality.GasActiveLow,
			TripPPM:   cfg.AirQuality.ComparatorTripPPM,
		},
		Delay: RealDelay{},
		board: board,
	}, nil
}

func (h *Hardware) Close() error {
	if h.board == nil {
		return nil
	}
	return h.board.Close()
}
