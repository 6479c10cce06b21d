package control

import (
	"encoding/json"

	"github.com/markusressel/vent2go/internal/values"
)

// Sample is a single point of a breath waveform
type Sample struct {
	// Phase is the time since the start of the breath, in seconds
	Phase float64 `json:"phase"`
	// Pressure in cmH2O
	Pressure float64 `json:"pressure"`
	// Volume is the exhaled volume since the start of the breath, in l
	Volume float64 `json:"volume"`
}

// MarshalJSON encodes undefined pressures as null
func (s Sample) MarshalJSON() ([]byte, error) {
	var pressure *float64
	if values.IsFinite(s.Pressure) {
		pressure = &s.Pressure
	}
	return json.Marshal(struct {
		Phase    float64  `json:"phase"`
		Pressure *float64 `json:"pressure"`
		Volume   float64  `json:"volume"`
	}{
		Phase:    s.Phase,
		Pressure: pressure,
		Volume:   s.Volume,
	})
}

// Waveform contains the samples of a single breath, in chronological order
type Waveform []Sample

func (w Waveform) Pressures(dst []float64) []float64 {
	dst = dst[:0]
	for _, sample := range w {
		dst = append(dst, sample.Pressure)
	}
	return dst
}

// archive is a ring buffer of the most recent breath waveforms
type archive struct {
	waveforms []Waveform
	start     int
	size      int
}

func newArchive(capacity int) *archive {
	if capacity < 1 {
		capacity = 1
	}
	return &archive{
		waveforms: make([]Waveform, capacity),
	}
}

func (a *archive) Len() int {
	return a.size
}

func (a *archive) Cap() int {
	return len(a.waveforms)
}

// Push appends the given waveform, evicting the oldest one if the archive is full
func (a *archive) Push(waveform Waveform) {
	end := (a.start + a.size) % len(a.waveforms)
	a.waveforms[end] = waveform
	if a.size < len(a.waveforms) {
		a.size++
	} else {
		a.start = (a.start + 1) % len(a.waveforms)
	}
}

// Last returns the most recent waveform
func (a *archive) Last() (Waveform, bool) {
	if a.size == 0 {
		return nil, false
	}
	return a.waveforms[(a.start+a.size-1)%len(a.waveforms)], true
}

// Drain removes and returns all waveforms, oldest first.
// The most recent waveform is kept in the archive.
func (a *archive) Drain() []Waveform {
	result := make([]Waveform, 0, a.size)
	for i := 0; i < a.size; i++ {
		result = append(result, a.waveforms[(a.start+i)%len(a.waveforms)])
	}

	last, ok := a.Last()
	for i := range a.waveforms {
		a.waveforms[i] = nil
	}
	a.start = 0
	a.size = 0
	if ok {
		// the caller owns the returned waveforms
		a.Push(append(Waveform(nil), last...))
	}
	return result
}
