package util

import "github.com/asecurityteam/rolling"

func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}

// GetWindowAvg returns the average of all values currently in the window
func GetWindowAvg(window *rolling.PointPolicy) float64 {
	return window.Reduce(rolling.Avg)
}

// GetWindowPercentile returns the p-th percentile of all values currently in the window.
// scratch is used as a buffer and returned, to avoid allocations on repeated calls.
func GetWindowPercentile(window *rolling.PointPolicy, p float64, scratch []float64) (float64, []float64) {
	var result float64
	window.Reduce(func(w rolling.Window) float64 {
		scratch = scratch[:0]
		for _, bucket := range w {
			scratch = append(scratch, bucket...)
		}
		result, scratch = PercentileOf(scratch, p, scratch)
		return result
	})
	return result, scratch
}
