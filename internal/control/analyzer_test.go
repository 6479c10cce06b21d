package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createTestBreath() Waveform {
	pressures := []float64{5, 23, 24, 25, 26, 4, 6, 7}
	volumes := []float64{0, 0, 0, 0, 0, 0.1, 0.3, 0.4}
	result := Waveform{}
	for i := range pressures {
		result = append(result, Sample{
			Phase:    float64(i) * 0.5,
			Pressure: pressures[i],
			Volume:   volumes[i],
		})
	}
	return result
}

func TestAnalyzer_Analyze(t *testing.T) {
	// GIVEN
	a := analyzer{}

	// WHEN
	result := a.analyze(createTestBreath())

	// THEN
	assert.InDelta(t, 4.6, result.Peep, 1e-9)
	assert.InDelta(t, 25.4, result.PipPlateau, 1e-9)
	assert.InDelta(t, 25.85, result.Pip, 1e-9)
	assert.Equal(t, 0.5, result.PipTime)
	assert.Equal(t, 2.0, result.IPhase)
	assert.Equal(t, 2.5, result.PeepTime)
	assert.InDelta(t, 0.4, result.Vte, 1e-9)
	assert.InDelta(t, 60/3.5, result.Bpm, 1e-9)
}

func TestAnalyzer_ReusesBuffers(t *testing.T) {
	// GIVEN
	a := analyzer{}
	first := a.analyze(createTestBreath())

	// WHEN
	second := a.analyze(createTestBreath())

	// THEN
	assert.Equal(t, first, second)
}

func TestAnalyzer_NaNPressure(t *testing.T) {
	// GIVEN
	a := analyzer{}
	waveform := createTestBreath()
	waveform[3].Pressure = math.NaN()

	// WHEN
	result := a.analyze(waveform)

	// THEN
	assert.True(t, math.IsNaN(result.Peep))
	assert.True(t, math.IsNaN(result.Pip))
	assert.True(t, math.IsNaN(result.PipPlateau))
	assert.True(t, math.IsNaN(result.PipTime))
	assert.True(t, math.IsNaN(result.PeepTime))
	assert.True(t, math.IsNaN(result.IPhase))
	assert.True(t, math.IsNaN(result.Vte))
	assert.True(t, math.IsNaN(result.Bpm))
}

func TestAnalyzer_ZeroDuration(t *testing.T) {
	// GIVEN
	a := analyzer{}
	waveform := Waveform{
		{Phase: 0, Pressure: 5},
		{Phase: 0, Pressure: 20},
	}

	// WHEN
	result := a.analyze(waveform)

	// THEN
	assert.True(t, math.IsNaN(result.Bpm))
	assert.Equal(t, 5.0, result.Peep)
	assert.Equal(t, 20.0, result.Pip)
}

func TestBreathMetrics_Derived(t *testing.T) {
	// GIVEN
	a := analyzer{}
	metrics := a.analyze(createTestBreath())

	// WHEN
	result := metrics.derived(7)

	// THEN
	assert.Equal(t, uint64(7), result.BreathCount)
	assert.Equal(t, metrics.Pip, result.Pip)
	assert.Equal(t, metrics.IPhase, result.IPhaseDuration)
	assert.Equal(t, metrics.Vte, result.Vte)
}
