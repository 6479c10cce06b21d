package controllers

import (
	"fmt"

	"github.com/markusressel/vent2go/internal/util"
)

// minRiseTime is the shortest rise from PEEP to PIP, a rise time of 0 is a step
const minRiseTime = 1e-8

// BreathWaveform is the target pressure curve of a single breath:
// a linear rise from PEEP to PIP, a plateau until the end of the inspiration,
// a linear fall back to PEEP and a PEEP hold until the end of the cycle.
type BreathWaveform struct {
	Peep float64
	Pip  float64

	// RiseEnd is the phase (in seconds) at which PIP is reached, at most InspirationEnd
	RiseEnd float64
	// InspirationEnd is the phase (in seconds) at which the plateau ends
	InspirationEnd float64
	// FallEnd is the phase (in seconds) at which PEEP is reached again
	FallEnd float64
	// CycleDuration is the length of a whole breath in seconds
	CycleDuration float64
}

func NewBreathWaveform(peep, pip, pipTime, inspirationTime, peepTime, cycleDuration float64) BreathWaveform {
	return BreathWaveform{
		Peep:           peep,
		Pip:            pip,
		RiseEnd:        util.Coerce(pipTime, minRiseTime, inspirationTime),
		InspirationEnd: inspirationTime,
		FallEnd:        inspirationTime + peepTime,
		CycleDuration:  cycleDuration,
	}
}

// At returns the target pressure at the given cycle phase
func (w BreathWaveform) At(phase float64) float64 {
	xs := []float64{0, w.RiseEnd, w.InspirationEnd, w.FallEnd, w.CycleDuration}
	ys := []float64{w.Peep, w.Pip, w.Pip, w.Peep, w.Peep}
	return util.InterpolateLinearly(xs, ys, phase)
}

// IsInspiration returns true if the given phase belongs to the inspiratory part of the breath
func (w BreathWaveform) IsInspiration(phase float64) bool {
	return phase < w.InspirationEnd
}

func (w BreathWaveform) Validate() error {
	if !(w.CycleDuration > 0) {
		return fmt.Errorf("cycle duration must be positive, was %v", w.CycleDuration)
	}
	if w.InspirationEnd < minRiseTime || w.FallEnd < w.InspirationEnd {
		return fmt.Errorf("keypoints must be ascending: inspiration end %v, fall end %v", w.InspirationEnd, w.FallEnd)
	}
	return nil
}

func (w BreathWaveform) String() string {
	return fmt.Sprintf("PEEP %.1f -> PIP %.1f after %.2fs, inspiration %.2fs, fall until %.2fs, cycle %.2fs",
		w.Peep, w.Pip, w.RiseEnd, w.InspirationEnd, w.FallEnd, w.CycleDuration)
}
