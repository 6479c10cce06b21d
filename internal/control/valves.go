package control

import (
	"math"

	"github.com/markusressel/vent2go/internal/hal"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/util"
	"github.com/markusressel/vent2go/internal/values"
)

// valves forwards actuator commands to the hal, skipping writes of values
// the hardware already has.
type valves struct {
	hal hal.Hal
	// allowed is checked before every write, nil allows all writes
	allowed func() bool

	// last known hardware state, NaN if unknown
	currentIn float64
	currentEx float64
}

func newValves(h hal.Hal, allowed func() bool) *valves {
	v := &valves{
		hal:       h,
		allowed:   allowed,
		currentIn: math.NaN(),
		currentEx: math.NaN(),
	}
	if setpoint, err := h.SetpointIn(); err == nil {
		v.currentIn = setpoint
	}
	if setpoint, err := h.SetpointEx(); err == nil {
		v.currentEx = setpoint
	}
	return v
}

// Set applies the given command, clamped to the physical range of the valves
func (v *valves) Set(signalIn, signalOut float64) values.ControlValues {
	return v.apply(signalIn, signalOut, false)
}

// Standby closes the inspiratory and opens the expiratory valve, regardless of the cached state
func (v *valves) Standby() {
	ui.Info("Valves to stand-by")
	v.apply(hal.MinSetpointIn, hal.SetpointExOpen, true)
}

// Release is a single pressure release command, regardless of the cached state
func (v *valves) Release() {
	v.apply(hal.MinSetpointIn, hal.SetpointExOpen, true)
}

// command maps the output of a controller onto the valves. The inlet is clamped and rounded,
// an undefined command closes the inlet and opens the outlet.
func command(signalIn, signalOut float64) values.ControlValues {
	in := math.Round(util.Coerce(signalIn, hal.MinSetpointIn, hal.MaxSetpointIn))
	if math.IsNaN(signalIn) {
		in = hal.MinSetpointIn
	}
	out := signalOut
	if math.IsNaN(signalOut) {
		out = hal.SetpointExOpen
	}
	return values.ControlValues{
		ControlSignalIn:  in,
		ControlSignalOut: out,
	}
}

func (v *valves) apply(signalIn, signalOut float64, force bool) values.ControlValues {
	result := command(signalIn, signalOut)
	in, out := result.ControlSignalIn, result.ControlSignalOut

	if v.allowed != nil && !v.allowed() {
		return result
	}

	if force || in != v.currentIn {
		if err := v.hal.SetSetpointIn(in); err != nil {
			ui.Error("Unable to set inspiratory valve to %v: %v", in, err)
			v.currentIn = math.NaN()
		} else {
			v.currentIn = in
		}
	}
	if force || out != v.currentEx {
		if err := v.hal.SetSetpointEx(out); err != nil {
			ui.Error("Unable to set expiratory valve to %v: %v", out, err)
			v.currentEx = math.NaN()
		} else {
			v.currentEx = out
		}
	}
	return result
}
