package alarm

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
)

type Config struct {
	// CoughDuration is the time the pressure may exceed the high pressure limit
	// before a pressure release is forced
	CoughDuration time.Duration
	// StuckSensorDuration is the time a sensor may report the exact same value
	StuckSensorDuration time.Duration
	// HeartbeatTimeout is the maximum allowed time without contact to the coordinator
	HeartbeatTimeout time.Duration
	// MaxFlow is the highest plausible expiratory flow, in l/s
	MaxFlow float64
	// MaxPressure is the highest plausible airway pressure, in cmH2O
	MaxPressure float64
}

var DefaultConfig = Config{
	CoughDuration:       100 * time.Millisecond,
	StuckSensorDuration: 200 * time.Millisecond,
	HeartbeatTimeout:    500 * time.Millisecond,
	MaxFlow:             10,
	MaxPressure:         100,
}

// Reading contains the values of a single loop iteration, that are checked for alarm conditions
type Reading struct {
	Now         time.Time
	Pressure    float64
	FlowOut     float64
	Oxygen      float64
	LastContact time.Time
}

// Tracker holds the state of checks that span multiple loop iterations.
// It is owned by a single run of the control loop and must not be shared.
type Tracker struct {
	stuckSince time.Time
	previous   *[3]float64
}

// Verdict is the outcome of a single evaluation
type Verdict struct {
	// ForceRelease is set when the high pressure limit has been exceeded
	// for longer than the cough tolerance
	ForceRelease bool
	// Raised contains the technical alarms that have been added in this evaluation
	Raised []Type
}

// Engine evaluates alarm conditions and holds the active alarms.
// The active alarms are guarded by the lock given to NewEngine, which
// is shared with the rest of the control module.
type Engine struct {
	mu     sync.Locker
	config Config
	rules  Rules

	highPressureLimit float64
	highPressure      *Alarm
	technical         map[Type]Alarm
}

func NewEngine(mu sync.Locker, config Config, rules Rules) *Engine {
	return &Engine{
		mu:                mu,
		config:            config,
		rules:             rules,
		highPressureLimit: rules[HighPressure].Limit,
		technical:         map[Type]Alarm{},
	}
}

// Evaluate runs all checks against the given reading
func (e *Engine) Evaluate(tracker *Tracker, r Reading) Verdict {
	verdict := Verdict{
		ForceRelease: e.checkHighPressure(r),
	}

	if e.checkStuckSensors(tracker, r) {
		elapsed := r.Now.Sub(tracker.stuckSince)
		if e.raise(SensorsStuck, r.Now, elapsed.Seconds(), fmt.Sprintf("Sensor values unchanged for %v", elapsed)) {
			verdict.Raised = append(verdict.Raised, SensorsStuck)
		}
	}

	if message, value, implausible := e.checkPlausibility(r); implausible {
		if e.raise(BadSensorReadings, r.Now, value, message) {
			verdict.Raised = append(verdict.Raised, BadSensorReadings)
		}
	}

	if elapsed := r.Now.Sub(r.LastContact); elapsed > e.config.HeartbeatTimeout {
		message := fmt.Sprintf("Controller has not heard from coordinator in %v", elapsed)
		if e.raise(MissedHeartbeat, r.Now, elapsed.Seconds(), message) {
			verdict.Raised = append(verdict.Raised, MissedHeartbeat)
		}
	}

	return verdict
}

func (e *Engine) checkHighPressure(r Reading) bool {
	e.mu.Lock()
	if !(r.Pressure > e.highPressureLimit) {
		e.highPressure = nil
		e.mu.Unlock()
		return false
	}
	if e.highPressure == nil {
		message := fmt.Sprintf("Pressure of %.1f exceeds limit of %.1f", r.Pressure, e.highPressureLimit)
		hapa := New(HighPressure, e.rules[HighPressure].Severity, r.Now, r.Pressure, message)
		e.highPressure = &hapa
	}
	exceededFor := r.Now.Sub(e.highPressure.StartTime)
	e.mu.Unlock()

	if exceededFor > e.config.CoughDuration {
		return true
	}
	ui.Debug("Transient high pressure of %.1f, probably a cough", r.Pressure)
	return false
}

// checkStuckSensors returns true once any of the sensors has been stuck for longer than allowed
func (e *Engine) checkStuckSensors(tracker *Tracker, r Reading) bool {
	current := [3]float64{r.Oxygen, r.FlowOut, r.Pressure}
	if tracker.previous == nil {
		tracker.previous = &current
		return false
	}

	previous := *tracker.previous
	tracker.previous = &current
	unchanged := current[0] == previous[0] || current[1] == previous[1] || current[2] == previous[2]
	if !unchanged {
		tracker.stuckSince = time.Time{}
		return false
	}

	if tracker.stuckSince.IsZero() {
		tracker.stuckSince = r.Now
		return false
	}
	return r.Now.Sub(tracker.stuckSince) > e.config.StuckSensorDuration
}

func (e *Engine) checkPlausibility(r Reading) (message string, value float64, implausible bool) {
	switch {
	case !inRange(r.Oxygen, 0, 100):
		return fmt.Sprintf("Oxygen reading of %v outside of [0, 100]", r.Oxygen), finiteOrZero(r.Oxygen), true
	case !inRange(r.FlowOut, 0, e.config.MaxFlow):
		return fmt.Sprintf("Flow reading of %v outside of [0, %v]", r.FlowOut, e.config.MaxFlow), finiteOrZero(r.FlowOut), true
	case !inRange(r.Pressure, 0, e.config.MaxPressure):
		return fmt.Sprintf("Pressure reading of %v outside of [0, %v]", r.Pressure, e.config.MaxPressure), finiteOrZero(r.Pressure), true
	}
	return "", 0, false
}

// raise adds a technical alarm of the given type, unless one is already active.
// Returns true if the alarm was added.
func (e *Engine) raise(alarmType Type, now time.Time, value float64, message string) bool {
	e.mu.Lock()
	if _, exists := e.technical[alarmType]; exists {
		e.mu.Unlock()
		return false
	}
	alarm := New(alarmType, e.rules[alarmType].Severity, now, value, message)
	e.technical[alarmType] = alarm
	e.mu.Unlock()

	ui.Warning("Technical alarm: %s", alarm)
	return true
}

// Active returns the currently active alarms, or nil if there are none
func (e *Engine) Active() *Active {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.highPressure == nil && len(e.technical) == 0 {
		return nil
	}

	result := &Active{}
	if e.highPressure != nil {
		hapa := *e.highPressure
		result.HighPressure = &hapa
	}
	for _, alarm := range e.technical {
		result.Technical = append(result.Technical, alarm)
	}
	sort.Slice(result.Technical, func(i, j int) bool {
		a, b := result.Technical[i], result.Technical[j]
		if a.StartTime.Equal(b.StartTime) {
			return a.Type < b.Type
		}
		return a.StartTime.Before(b.StartTime)
	})
	return result
}

// Clear acknowledges the technical alarm of the given type.
// Returns false if no such alarm was active.
func (e *Engine) Clear(alarmType Type) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.technical[alarmType]; !exists {
		return false
	}
	delete(e.technical, alarmType)
	return true
}

func (e *Engine) SetHighPressureLimit(limit float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highPressureLimit = limit
}

func (e *Engine) HighPressureLimit() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highPressureLimit
}

// inRange returns false for values outside [min, max], including NaN
func inRange(value float64, min float64, max float64) bool {
	return value >= min && value <= max
}

func finiteOrZero(value float64) float64 {
	if values.IsFinite(value) {
		return value
	}
	return 0
}
