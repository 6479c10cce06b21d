package util

import "time"

type PidLoop struct {
	// Proportional Constant
	p float64
	// Integral Constant
	i float64
	// Derivative Constant
	d float64
	// Minimum output value
	outMin float64
	// Maximum output value
	outMax float64

	// last measured value
	lastMeasured float64
	// integral from previous loop + error, i.e. integral error
	integral float64
	// last execution time of the loop
	lastTime time.Time
	// last output value
	lastOutput float64
}

func NewPidLoop(p, i, d, min, max float64) *PidLoop {
	return &PidLoop{
		p:      p,
		i:      i,
		d:      d,
		outMin: min,
		outMax: max,
	}
}

// Reset forgets all accumulated state, the next call to Loop behaves like the first one
func (p *PidLoop) Reset() {
	p.lastTime = time.Time{}
	p.integral = 0
	p.lastMeasured = 0
	p.lastOutput = 0
}

// Loop advances the pid loop to the given point in time
func (p *PidLoop) Loop(target float64, measured float64, now time.Time) float64 {
	initialized := !p.lastTime.IsZero()
	if !initialized {
		p.lastMeasured = measured
		p.lastTime = now
		p.integral = 0.0

		output := Coerce(p.p*(target-measured), p.outMin, p.outMax)
		p.lastOutput = output
		return output
	}

	dt := now.Sub(p.lastTime).Seconds()
	if dt <= 0 {
		return p.lastOutput
	}

	err := target - measured

	proportionalTerm := p.p * err

	// anti-windup: don't integrate if the output is saturated
	// and the error pushes it even further
	integrate := true
	if p.lastOutput >= p.outMax && err > 0 {
		integrate = false
	}
	if p.lastOutput <= p.outMin && err < 0 {
		integrate = false
	}
	if integrate {
		p.integral = p.integral + err*dt
	}
	integralTerm := p.i * p.integral

	// derivative on measurement, avoids a kick on target changes
	derivativeRaw := (measured - p.lastMeasured) / dt
	derivativeTerm := -p.d * derivativeRaw

	output := Coerce(proportionalTerm+integralTerm+derivativeTerm, p.outMin, p.outMax)

	p.lastTime = now
	p.lastMeasured = measured
	p.lastOutput = output

	return output
}
