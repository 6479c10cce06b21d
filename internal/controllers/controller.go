package controllers

import (
	"fmt"
	"sort"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Controller computes the actuator commands of a single loop iteration.
// Implementations are not safe for concurrent use, every run of the control
// loop creates its own instance.
type Controller interface {
	// Feed returns the inlet valve opening (0..100) and the outlet valve state (0 closed, 1 open)
	// for the given pressure measurement
	Feed(pressure float64, now time.Time) (signalIn float64, signalOut float64)
	// CyclePhase returns the time since the start of the current breath, in seconds.
	// The value grows within a breath and wraps to near zero when the next breath starts.
	CyclePhase(now time.Time) float64
	// Dt returns the time since the previous call
	Dt(now time.Time) time.Duration
}

// WaveformAware is implemented by controllers that accept changes of the target waveform at runtime
type WaveformAware interface {
	SetWaveform(waveform BreathWaveform)
}

// Params are the tuning parameters of the available algorithms
type Params struct {
	P float64
	I float64
	D float64
	// InletDuty is the inlet valve opening during inspiration, used by open loop algorithms
	InletDuty float64
}

type Factory func(waveform BreathWaveform, params Params) (Controller, error)

const (
	TypePid         = "pid"
	TypePredestined = "predestined"
)

var (
	Registry = cmap.New[Factory]()
)

func init() {
	Registry.Set(TypePid, func(waveform BreathWaveform, params Params) (Controller, error) {
		return NewPidController(waveform, params.P, params.I, params.D), nil
	})
	Registry.Set(TypePredestined, func(waveform BreathWaveform, params Params) (Controller, error) {
		if params.InletDuty < 0 || params.InletDuty > 100 {
			return nil, fmt.Errorf("inlet duty must be in [0, 100], was %v", params.InletDuty)
		}
		return NewPredestinedController(waveform, params.InletDuty), nil
	})
}

// New creates a controller using the algorithm registered under the given name
func New(algorithm string, waveform BreathWaveform, params Params) (Controller, error) {
	factory, ok := Registry.Get(algorithm)
	if !ok {
		return nil, fmt.Errorf("unknown control algorithm '%s', available: %v", algorithm, Algorithms())
	}
	if err := waveform.Validate(); err != nil {
		return nil, fmt.Errorf("invalid waveform for '%s': %w", algorithm, err)
	}
	return factory(waveform, params)
}

// Algorithms returns the names of all registered algorithms
func Algorithms() []string {
	result := Registry.Keys()
	sort.Strings(result)
	return result
}
