package controllers

import "time"

// PredestinedController opens the inspiratory valve with a fixed duty during inspiration
// and does not look at the measured pressure, except for holding PEEP during expiration.
type PredestinedController struct {
	waveform  BreathWaveform
	inletDuty float64
	clock     cycleClock
}

func NewPredestinedController(waveform BreathWaveform, inletDuty float64) *PredestinedController {
	return &PredestinedController{
		waveform:  waveform,
		inletDuty: inletDuty,
	}
}

func (c *PredestinedController) Feed(pressure float64, now time.Time) (float64, float64) {
	phase := c.CyclePhase(now)
	if c.waveform.IsInspiration(phase) {
		return c.inletDuty, 0
	}
	if pressure < c.waveform.Peep {
		// hold PEEP
		return 0, 0
	}
	return 0, 1
}

func (c *PredestinedController) CyclePhase(now time.Time) float64 {
	return c.clock.phase(now, c.waveform.CycleDuration)
}

func (c *PredestinedController) Dt(now time.Time) time.Duration {
	return c.clock.dt(now)
}

func (c *PredestinedController) SetWaveform(waveform BreathWaveform) {
	c.waveform = waveform
}
