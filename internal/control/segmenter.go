package control

import (
	"time"

	"github.com/markusressel/vent2go/internal/util"
)

// dpdtWindowSize is the number of samples of the moving dP/dt average
const dpdtWindowSize = 10

type boundary int

const (
	// continued means the sample belongs to the current breath
	continued boundary = iota
	// started means the first sample of a run started the first breath
	started
	// wrapped means the cycle phase decreased, closing the previous breath
	wrapped
)

// segmenter splits the continuous stream of samples into breaths,
// by watching the cycle phase for wrap-arounds.
type segmenter struct {
	hasPrevious   bool
	previousPhase float64

	current Waveform
	// exhaled volume since the start of the breath, in l
	volume float64

	dpdt         float64
	dpdtSamples  int
	lastPressure float64
}

// Integrate adds the flow of the given time step to the volume of the current breath
func (s *segmenter) Integrate(dt time.Duration, flow float64) {
	s.volume += dt.Seconds() * flow
}

// Observe adds a sample to the current breath. If the sample starts a new breath,
// the closed waveform is returned, if it contains more than a single sample.
func (s *segmenter) Observe(phase float64, pressure float64, dt time.Duration) (Waveform, boundary) {
	result := continued
	if !s.hasPrevious {
		result = started
	} else if s.previousPhase > phase {
		result = wrapped
	}

	var closed Waveform
	if result == continued {
		s.updateSlope(pressure, dt)
		s.current = append(s.current, Sample{Phase: phase, Pressure: pressure, Volume: s.volume})
	} else {
		s.volume = 0
		s.dpdt = 0
		s.dpdtSamples = 0
		if len(s.current) > 1 {
			closed = s.current
		}
		s.current = Waveform{{Phase: 0, Pressure: pressure, Volume: s.volume}}
	}

	s.lastPressure = pressure
	s.hasPrevious = true
	s.previousPhase = phase
	return closed, result
}

// Slope returns the moving average of the pressure change within the current breath, in cmH2O/s
func (s *segmenter) Slope() float64 {
	return s.dpdt
}

func (s *segmenter) updateSlope(pressure float64, dt time.Duration) {
	if dt <= 0 {
		return
	}
	rate := (pressure - s.lastPressure) / dt.Seconds()
	if s.dpdtSamples < dpdtWindowSize {
		s.dpdtSamples++
	}
	s.dpdt = util.UpdateSimpleMovingAvg(s.dpdt, s.dpdtSamples, rate)
}
