package values

import (
	"encoding/json"
	"math"
	"time"
)

// ControlSetting is a request of the coordinator to change a single control value.
// MinValue and MaxValue are optional, for PIP the MaxValue carries the high pressure alarm limit.
type ControlSetting struct {
	Name      ValueName `json:"name"`
	Value     float64   `json:"value"`
	MinValue  *float64  `json:"minValue,omitempty"`
	MaxValue  *float64  `json:"maxValue,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SensorValues is an immutable snapshot of the measurements of the control loop.
// Measurements that are not (yet) defined are NaN.
type SensorValues struct {
	PIP                float64
	PEEP               float64
	FiO2               float64
	Pressure           float64
	Vte                float64
	BreathsPerMinute   float64
	InspirationTimeSec float64
	FlowOut            float64

	Timestamp   time.Time
	LoopCounter uint64
	BreathCount uint64
}

// NewSensorValues returns a snapshot where all measurements are undefined
func NewSensorValues() SensorValues {
	nan := math.NaN()
	return SensorValues{
		PIP:                nan,
		PEEP:               nan,
		FiO2:               nan,
		Pressure:           nan,
		Vte:                nan,
		BreathsPerMinute:   nan,
		InspirationTimeSec: nan,
		FlowOut:            nan,
		Timestamp:          time.Now(),
	}
}

// Get returns the measurement with the given name
func (s SensorValues) Get(name ValueName) (float64, bool) {
	switch name {
	case PIP:
		return s.PIP, true
	case PEEP:
		return s.PEEP, true
	case FiO2:
		return s.FiO2, true
	case Pressure:
		return s.Pressure, true
	case Vte:
		return s.Vte, true
	case BreathsPerMinute:
		return s.BreathsPerMinute, true
	case InspirationTimeSec:
		return s.InspirationTimeSec, true
	case FlowOut:
		return s.FlowOut, true
	}
	return math.NaN(), false
}

type sensorValuesJson struct {
	PIP                *float64  `json:"PIP"`
	PEEP               *float64  `json:"PEEP"`
	FiO2               *float64  `json:"FIO2"`
	Pressure           *float64  `json:"PRESSURE"`
	Vte                *float64  `json:"VTE"`
	BreathsPerMinute   *float64  `json:"BREATHS_PER_MINUTE"`
	InspirationTimeSec *float64  `json:"INSPIRATION_TIME_SEC"`
	FlowOut            *float64  `json:"FLOWOUT"`
	Timestamp          time.Time `json:"timestamp"`
	LoopCounter        uint64    `json:"loopCounter"`
	BreathCount        uint64    `json:"breathCount"`
}

func (s SensorValues) MarshalJSON() ([]byte, error) {
	return json.Marshal(sensorValuesJson{
		PIP:                nullable(s.PIP),
		PEEP:               nullable(s.PEEP),
		FiO2:               nullable(s.FiO2),
		Pressure:           nullable(s.Pressure),
		Vte:                nullable(s.Vte),
		BreathsPerMinute:   nullable(s.BreathsPerMinute),
		InspirationTimeSec: nullable(s.InspirationTimeSec),
		FlowOut:            nullable(s.FlowOut),
		Timestamp:          s.Timestamp,
		LoopCounter:        s.LoopCounter,
		BreathCount:        s.BreathCount,
	})
}

func (s *SensorValues) UnmarshalJSON(data []byte) error {
	var raw sensorValuesJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SensorValues{
		PIP:                orNaN(raw.PIP),
		PEEP:               orNaN(raw.PEEP),
		FiO2:               orNaN(raw.FiO2),
		Pressure:           orNaN(raw.Pressure),
		Vte:                orNaN(raw.Vte),
		BreathsPerMinute:   orNaN(raw.BreathsPerMinute),
		InspirationTimeSec: orNaN(raw.InspirationTimeSec),
		FlowOut:            orNaN(raw.FlowOut),
		Timestamp:          raw.Timestamp,
		LoopCounter:        raw.LoopCounter,
		BreathCount:        raw.BreathCount,
	}
	return nil
}

// DerivedValues summarizes a single, completed breath cycle
type DerivedValues struct {
	BreathCount    uint64
	IPhaseDuration float64
	PipTime        float64
	PeepTime       float64
	Pip            float64
	PipPlateau     float64
	Peep           float64
	Vte            float64
	Timestamp      time.Time
}

type derivedValuesJson struct {
	BreathCount    uint64    `json:"breathCount"`
	IPhaseDuration *float64  `json:"iPhaseDuration"`
	PipTime        *float64  `json:"pipTime"`
	PeepTime       *float64  `json:"peepTime"`
	Pip            *float64  `json:"pip"`
	PipPlateau     *float64  `json:"pipPlateau"`
	Peep           *float64  `json:"peep"`
	Vte            *float64  `json:"vte"`
	Timestamp      time.Time `json:"timestamp"`
}

func (d DerivedValues) MarshalJSON() ([]byte, error) {
	return json.Marshal(derivedValuesJson{
		BreathCount:    d.BreathCount,
		IPhaseDuration: nullable(d.IPhaseDuration),
		PipTime:        nullable(d.PipTime),
		PeepTime:       nullable(d.PeepTime),
		Pip:            nullable(d.Pip),
		PipPlateau:     nullable(d.PipPlateau),
		Peep:           nullable(d.Peep),
		Vte:            nullable(d.Vte),
		Timestamp:      d.Timestamp,
	})
}

func (d *DerivedValues) UnmarshalJSON(data []byte) error {
	var raw derivedValuesJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DerivedValues{
		BreathCount:    raw.BreathCount,
		IPhaseDuration: orNaN(raw.IPhaseDuration),
		PipTime:        orNaN(raw.PipTime),
		PeepTime:       orNaN(raw.PeepTime),
		Pip:            orNaN(raw.Pip),
		PipPlateau:     orNaN(raw.PipPlateau),
		Peep:           orNaN(raw.Peep),
		Vte:            orNaN(raw.Vte),
		Timestamp:      raw.Timestamp,
	}
	return nil
}

// ControlValues is the actuator command pair computed in a single loop iteration
type ControlValues struct {
	// ControlSignalIn is the opening of the inspiratory valve in percent (0..100)
	ControlSignalIn float64 `json:"controlSignalIn"`
	// ControlSignalOut is the state of the expiratory valve, 0 closed, 1 open
	ControlSignalOut float64 `json:"controlSignalOut"`
}

// encoding/json cannot represent NaN, so undefined values are sent as null
func nullable(value float64) *float64 {
	if !IsFinite(value) {
		return nil
	}
	return &value
}

func orNaN(value *float64) float64 {
	if value == nil {
		return math.NaN()
	}
	return *value
}
