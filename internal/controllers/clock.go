package controllers

import "time"

// cycleClock keeps track of the breath timing of a controller
type cycleClock struct {
	breathStart time.Time
	lastDt      time.Time
}

// phase returns the time since the start of the current breath, in seconds.
// A changed cycle duration takes effect with the next breath.
func (c *cycleClock) phase(now time.Time, cycleDuration float64) float64 {
	if c.breathStart.IsZero() {
		c.breathStart = now
	}
	elapsed := now.Sub(c.breathStart).Seconds()
	if cycleDuration <= 0 || elapsed < cycleDuration {
		return elapsed
	}

	cycle := time.Duration(cycleDuration * float64(time.Second))
	if cycle <= 0 {
		return elapsed
	}
	completed := now.Sub(c.breathStart) / cycle
	c.breathStart = c.breathStart.Add(completed * cycle)
	return now.Sub(c.breathStart).Seconds()
}

// dt returns the time since the previous call, zero on the first call
func (c *cycleClock) dt(now time.Time) time.Duration {
	if c.lastDt.IsZero() {
		c.lastDt = now
		return 0
	}
	result := now.Sub(c.lastDt)
	c.lastDt = now
	return result
}
