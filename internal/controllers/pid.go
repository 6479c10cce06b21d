package controllers

import (
	"time"

	"github.com/markusressel/vent2go/internal/util"
)

type PidDefaults struct {
	P float64
	I float64
	D float64
}

var DefaultPidConfig = PidDefaults{
	P: 4,
	I: 10,
	D: 0,
}

// PidController tracks the target pressure of a BreathWaveform with the inspiratory valve.
// The expiratory valve is closed during inspiration and open otherwise.
type PidController struct {
	waveform BreathWaveform
	pidLoop  *util.PidLoop
	clock    cycleClock
}

func NewPidController(waveform BreathWaveform, p, i, d float64) *PidController {
	return &PidController{
		waveform: waveform,
		pidLoop:  util.NewPidLoop(p, i, d, 0, 100),
	}
}

func (c *PidController) Feed(pressure float64, now time.Time) (float64, float64) {
	phase := c.CyclePhase(now)
	target := c.waveform.At(phase)

	signalIn := c.pidLoop.Loop(target, pressure, now)
	if c.waveform.IsInspiration(phase) {
		return signalIn, 0
	}
	return signalIn, 1
}

func (c *PidController) CyclePhase(now time.Time) float64 {
	return c.clock.phase(now, c.waveform.CycleDuration)
}

func (c *PidController) Dt(now time.Time) time.Duration {
	return c.clock.dt(now)
}

func (c *PidController) SetWaveform(waveform BreathWaveform) {
	c.waveform = waveform
}
