package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvg(t *testing.T) {
	assert.Equal(t, 2.0, Avg([]float64{1, 2, 3}))
}

func TestUpdateSimpleMovingAvg(t *testing.T) {
	// GIVEN
	avg := 10.0

	// WHEN
	result := UpdateSimpleMovingAvg(avg, 10, 20)

	// THEN
	assert.Equal(t, 11.0, result)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 100.0, Coerce(140, 0, 100))
	assert.Equal(t, 0.0, Coerce(-3, 0, 100))
	assert.Equal(t, 42.0, Coerce(42, 0, 100))
}

func TestPercentile(t *testing.T) {
	// GIVEN
	sorted := []float64{1, 2, 3, 4}

	// THEN
	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 4.0, Percentile(sorted, 100))
	assert.InDelta(t, 2.5, Percentile(sorted, 50), 1e-12)
	// rank 0.2 * 3 = 0.6
	assert.InDelta(t, 1.6, Percentile(sorted, 20), 1e-12)
	// rank 0.95 * 3 = 2.85
	assert.InDelta(t, 3.85, Percentile(sorted, 95), 1e-12)
}

func TestPercentile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestPercentile_Single(t *testing.T) {
	assert.Equal(t, 7.0, Percentile([]float64{7}, 80))
}

func TestPercentileOf_ReusesScratch(t *testing.T) {
	// GIVEN
	scratch := make([]float64, 0, 8)
	values := []float64{5, 1, 4, 2, 3}

	// WHEN
	result, scratch := PercentileOf(values, 50, scratch)

	// THEN
	assert.Equal(t, 3.0, result)
	assert.Equal(t, 8, cap(scratch))
	// input must not be reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestInterpolateLinearly(t *testing.T) {
	// GIVEN
	xs := []float64{0, 1, 3}
	ys := []float64{5, 25, 5}

	expectedInputOutput := map[float64]float64{
		-1:  5,
		0:   5,
		0.5: 15,
		1:   25,
		2:   15,
		3:   5,
		10:  5,
	}

	for input, output := range expectedInputOutput {
		// WHEN
		result := InterpolateLinearly(xs, ys, input)

		// THEN
		assert.InDelta(t, output, result, 1e-9, "input %f", input)
	}
}

func TestInterpolateLinearly_InvalidInput(t *testing.T) {
	assert.True(t, math.IsNaN(InterpolateLinearly([]float64{1}, []float64{}, 1)))
}
