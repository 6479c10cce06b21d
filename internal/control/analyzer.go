package control

import (
	"math"

	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/util"
	"github.com/markusressel/vent2go/internal/values"
)

// breathMetrics are the features extracted from a single breath waveform
type breathMetrics struct {
	Peep       float64
	PipPlateau float64
	Pip        float64
	PipTime    float64
	PeepTime   float64
	IPhase     float64
	Vte        float64
	Bpm        float64
}

func undefinedMetrics() breathMetrics {
	nan := math.NaN()
	return breathMetrics{
		Peep:       nan,
		PipPlateau: nan,
		Pip:        nan,
		PipTime:    nan,
		PeepTime:   nan,
		IPhase:     nan,
		Vte:        nan,
		Bpm:        nan,
	}
}

func (b breathMetrics) derived(breathCount uint64) values.DerivedValues {
	return values.DerivedValues{
		BreathCount:    breathCount,
		IPhaseDuration: b.IPhase,
		PipTime:        b.PipTime,
		PeepTime:       b.PeepTime,
		Pip:            b.Pip,
		PipPlateau:     b.PipPlateau,
		Peep:           b.Peep,
		Vte:            b.Vte,
	}
}

// analyzer estimates the pressure levels of a breath from percentiles of the
// samples below and above the mean pressure. The buffers are reused between breaths.
type analyzer struct {
	pressures []float64
	selection []float64
	scratch   []float64
}

func (a *analyzer) analyze(waveform Waveform) breathMetrics {
	result := undefinedMetrics()
	if len(waveform) == 0 {
		return result
	}

	a.pressures = waveform.Pressures(a.pressures)
	mean := util.Avg(a.pressures)
	if !values.IsFinite(mean) {
		return result
	}

	a.selection = selectWhere(a.pressures, a.selection, func(p float64) bool { return p < mean })
	result.Peep, a.scratch = util.PercentileOf(a.selection, 20, a.scratch)

	a.selection = selectWhere(a.pressures, a.selection, func(p float64) bool { return p > mean })
	result.PipPlateau, a.scratch = util.PercentileOf(a.selection, 80, a.scratch)
	result.Pip, a.scratch = util.PercentileOf(a.selection, 95, a.scratch)

	plateauThreshold := 0.9 * result.PipPlateau
	result.PipTime = math.NaN()
	result.IPhase = math.NaN()
	result.PeepTime = math.NaN()
	for _, sample := range waveform {
		if sample.Pressure > plateauThreshold {
			if math.IsNaN(result.PipTime) {
				result.PipTime = sample.Phase
			}
			result.IPhase = sample.Phase
		}
		if math.IsNaN(result.PeepTime) && sample.Pressure < result.Peep {
			result.PeepTime = sample.Phase
		}
	}

	minVolume, maxVolume := math.Inf(1), math.Inf(-1)
	for _, sample := range waveform {
		minVolume = math.Min(minVolume, sample.Volume)
		maxVolume = math.Max(maxVolume, sample.Volume)
	}
	result.Vte = maxVolume - minVolume

	lastPhase := waveform[len(waveform)-1].Phase
	if lastPhase == 0 {
		ui.Warning("Unable to calculate breaths per minute, breath duration was %v", lastPhase)
	} else {
		result.Bpm = 60 / lastPhase
	}

	return result
}

// selectWhere copies all values matching the predicate into dst
func selectWhere(values []float64, dst []float64, predicate func(float64) bool) []float64 {
	dst = dst[:0]
	for _, value := range values {
		if predicate(value) {
			dst = append(dst, value)
		}
	}
	return dst
}
