package hal

import (
	"fmt"
	"time"

	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// DS3231 reads wall-clock time from a DS3231 real-time clock. The chip is
// assumed to hold local time, as set by hwclock --localtime.
type DS3231 struct {
	dev I2CDevice
	loc *time.Location
}

func NewDS3231(dev I2CDevice) *DS3231 {
	return &DS3231{dev: dev, loc: time.Local}
}

func (r *DS3231) ReadRealTimeClock() (model.TimeReading, error) {
	t, err := r.ReadTime()
	if err != nil {
		return model.TimeReading{}, err
	}
	return model.NewTimeReading(t), nil
}

// ReadTime reads the seven timekeeping registers starting at 0x00.
func (r *DS3231) ReadTime() (time.Time, error) {
	buf := make([]byte, 7)
	if err := r.dev.Tx([]byte{0x00}, buf); err != nil {
		return time.Time{}, &IOError{Op: OpReadClock, Err: err}
	}
	t, err := decodeDS3231(buf, r.loc)
	if err != nil {
		return time.Time{}, &IOError{Op: OpReadClock, Err: err}
	}
	return t, nil
}

func decodeDS3231(buf []byte, loc *time.Location) (time.Time, error) {
	sec := fromBCD(buf[0] & 0x7f)
	minute := fromBCD(buf[1] & 0x7f)

	var hour int
	if buf[2]&0x40 != 0 {
		// 12-hour mode, bit 5 is PM
		hour = fromBCD(buf[2] & 0x1f)
		if hour == 12 {
			hour = 0
		}
		if buf[2]&0x20 != 0 {
			hour += 12
		}
	} else {
		hour = fromBCD(buf[2] & 0x3f)
	}

	day := fromBCD(buf[4] & 0x3f)
	month := fromBCD(buf[5] & 0x1f)
	year := 2000 + fromBCD(buf[6])
	if buf[5]&0x80 != 0 {
		year += 100
	}

	if sec > 59 || minute > 59 || hour > 23 || day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("rtc registers out of range: % x", buf)
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

// SystemClock reads the kernel clock. Used when the board has no RTC or the
// RTC is already synced into system time.
type SystemClock struct {
	Now func() time.Time
}

func (c SystemClock) ReadRealTimeClock() (model.TimeReading, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return model.NewTimeReading(now()), nil
}
