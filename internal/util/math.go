package util

import (
	"math"
	"sort"
)

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum / (float64(len(values)))
}

// Ratio calculates the ration that target has in comparison to rangeMin and rangeMax
// Make sure that:
// rangeMin <= target <= rangeMax
// rangeMax - rangeMin != 0
func Ratio(target float64, rangeMin float64, rangeMax float64) float64 {
	return (target - rangeMin) / (rangeMax - rangeMin)
}

// UpdateSimpleMovingAvg calculates the new moving average, based on an existing average and buffer size
func UpdateSimpleMovingAvg(oldAvg float64, n int, newValue float64) float64 {
	return oldAvg + (1/float64(n))*(newValue-oldAvg)
}

// Coerce returns a value that is at least min and at most max, otherwise equal to value
func Coerce(value float64, min float64, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Percentile returns the p-th percentile (0..100) of the given, ascending sorted values,
// linearly interpolating between the two closest ranks.
// Returns NaN for an empty input.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	rank := Coerce(p, 0, 100) / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// PercentileOf calculates the p-th percentile of the (unsorted) values, using
// scratch as a buffer to avoid allocations. The (possibly grown) buffer is returned
// so it can be reused by the caller.
func PercentileOf(values []float64, p float64, scratch []float64) (float64, []float64) {
	scratch = append(scratch[:0], values...)
	sort.Float64s(scratch)
	return Percentile(scratch, p), scratch
}

// InterpolateLinearly returns the y-value for the given x, linearly interpolated
// between the given support points. xs must be sorted ascending and have the same length as ys.
// Inputs outside the support range fall back to the first/last y-value.
func InterpolateLinearly(xs []float64, ys []float64, x float64) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return math.NaN()
	}
	if x <= xs[0] {
		return ys[0]
	}
	for i := 0; i < len(xs)-1; i++ {
		currentX := xs[i]
		nextX := xs[i+1]
		if x >= nextX {
			continue
		}
		if nextX == currentX {
			return ys[i+1]
		}
		ratio := Ratio(x, currentX, nextX)
		return ys[i] + ratio*(ys[i+1]-ys[i])
	}
	return ys[len(ys)-1]
}
