package values

import (
	"fmt"
	"math"
)

type ValueName string

const (
	PIP                ValueName = "PIP"
	PIPTime            ValueName = "PIP_TIME"
	PEEP               ValueName = "PEEP"
	PEEPTime           ValueName = "PEEP_TIME"
	BreathsPerMinute   ValueName = "BREATHS_PER_MINUTE"
	InspirationTimeSec ValueName = "INSPIRATION_TIME_SEC"

	FiO2     ValueName = "FIO2"
	Pressure ValueName = "PRESSURE"
	Vte      ValueName = "VTE"
	FlowOut  ValueName = "FLOWOUT"
)

// ControlDefault describes the range and the startup value of a control setting
type ControlDefault struct {
	Name    ValueName `json:"name"`
	Unit    string    `json:"unit"`
	Default float64   `json:"default"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
}

// ControlNames lists all settings a coordinator is allowed to change, in display order
var ControlNames = []ValueName{
	PIP,
	PIPTime,
	PEEP,
	PEEPTime,
	BreathsPerMinute,
	InspirationTimeSec,
}

var Controls = map[ValueName]ControlDefault{
	PIP:                {Name: PIP, Unit: "cmH2O", Default: 22, Min: 10, Max: 30},
	PIPTime:            {Name: PIPTime, Unit: "s", Default: 1.0, Min: 0.2, Max: 5},
	PEEP:               {Name: PEEP, Unit: "cmH2O", Default: 5, Min: 0, Max: 16},
	PEEPTime:           {Name: PEEPTime, Unit: "s", Default: 0.5, Min: 0, Max: 2},
	BreathsPerMinute:   {Name: BreathsPerMinute, Unit: "breaths/min", Default: 17, Min: 10, Max: 30},
	InspirationTimeSec: {Name: InspirationTimeSec, Unit: "s", Default: 2.0, Min: 0.5, Max: 3.0},
}

// IsControl returns true if the given name is one of the settable controls
func IsControl(name ValueName) bool {
	_, ok := Controls[name]
	return ok
}

// ParseValueName converts user input (e.g. from the command line) to a ValueName
func ParseValueName(text string) (ValueName, error) {
	name := ValueName(text)
	if !IsControl(name) {
		return "", fmt.Errorf("unknown control: %s", text)
	}
	return name, nil
}

// DefaultBreathPeriod is the duration of a single breath at the default breathing rate, in seconds
func DefaultBreathPeriod() float64 {
	return 60 / Controls[BreathsPerMinute].Default
}

// IsFinite returns true if the given value is neither NaN nor +-Inf
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
