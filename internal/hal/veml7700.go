package hal

// VEML7700 register map and the lux resolution for gain x1, 100 ms
// integration.
const (
	veml7700RegConfig = 0x00
	veml7700RegALS    = 0x04

	veml7700Resolution = 0.0576
)

// VEML7700 is the ambient light sensor.
type VEML7700 struct {
	dev I2CDevice
}

func NewVEML7700(dev I2CDevice) *VEML7700 {
	return &VEML7700{dev: dev}
}

// Configure powers the sensor on at gain x1 with 100 ms integration.
func (s *VEML7700) Configure() error {
	if err := s.dev.Tx([]byte{veml7700RegConfig, 0x00, 0x00}, nil); err != nil {
		return &IOError{Op: OpReadLux, Err: err}
	}
	return nil
}

func (s *VEML7700) ReadAmbientLux() (float64, error) {
	buf := make([]byte, 2)
	if err := s.dev.Tx([]byte{veml7700RegALS}, buf); err != nil {
		return 0, &IOError{Op: OpReadLux, Err: err}
	}
	raw := uint16(buf[0]) | uint16(buf[1])<<8
	return float64(raw) * veml7700Resolution, nil
}
