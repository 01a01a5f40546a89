package model

import (
	"fmt"
	"time"
)

// Channel identifies one physical input or output of the office zone.
type Channel int

const (
	ChannelOccupancy1 Channel = iota + 1
	ChannelOccupancy2
	ChannelOccupancy3
	ChannelOccupancy4
	ChannelLightRelay
	ChannelGasSensor
	ChannelBuzzer
)

// OccupancyChannels are the four infrared quadrant sensors.
var OccupancyChannels = []Channel{
	ChannelOccupancy1,
	ChannelOccupancy2,
	ChannelOccupancy3,
	ChannelOccupancy4,
}

func (c Channel) String() string {
	switch c {
	case ChannelOccupancy1:
		return "occupancy_1"
	case ChannelOccupancy2:
		return "occupancy_2"
	case ChannelOccupancy3:
		return "occupancy_3"
	case ChannelOccupancy4:
		return "occupancy_4"
	case ChannelLightRelay:
		return "light_relay"
	case ChannelGasSensor:
		return "gas_sensor"
	case ChannelBuzzer:
		return "buzzer"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// IsOccupancy reports whether c is one of the quadrant occupancy sensors.
func (c Channel) IsOccupancy() bool {
	for _, oc := range OccupancyChannels {
		if c == oc {
			return true
		}
	}
	return false
}

// ControllerState is the only memory the controller carries between ticks.
// The zero value is the safe default: blinds closed, light off, buzzer off.
type ControllerState struct {
	BlindsOpen bool `json:"blinds_open"`
	LightOn    bool `json:"light_on"`
	BuzzerOn   bool `json:"buzzer_on"`
}

// TimeReading is a wall-clock sample from the real-time clock.
type TimeReading struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Second  int
}

func NewTimeReading(t time.Time) TimeReading {
	return TimeReading{
		Weekday: t.Weekday(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}

func (r TimeReading) IsWeekday() bool {
	return r.Weekday >= time.Monday && r.Weekday <= time.Friday
}
