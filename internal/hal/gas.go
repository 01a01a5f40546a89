package hal

import "github.com/thatsimonsguy/intelligent-office/internal/model"

// ComparatorGasSensor reads an MQ-2 style module through its digital
// comparator output. The module only reports whether its potentiometer trip
// point has been crossed, so a tripped comparator reads as TripPPM and an
// idle one as zero.
type ComparatorGasSensor struct {
	IO        DigitalIO
	ActiveLow bool
	TripPPM   float64
}

func (g ComparatorGasSensor) ReadGasPPM() (float64, error) {
	level, err := g.IO.ReadDigitalInput(model.ChannelGasSensor)
	if err != nil {
		return 0, err
	}
	if level != g.ActiveLow {
		return g.TripPPM, nil
	}
	return 0, nil
}
