package control

import (
	"fmt"
	"math"
	"time"

	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
)

// measurements are the latest values measured and derived by the loop
type measurements struct {
	reading
	breathMetrics
}

func newMeasurements() measurements {
	return measurements{
		reading: reading{
			Pressure: math.NaN(),
			Oxygen:   math.NaN(),
		},
		breathMetrics: undefinedMetrics(),
	}
}

func (m measurements) snapshot(now time.Time) values.SensorValues {
	return values.SensorValues{
		PIP:                m.Pip,
		PEEP:               m.Peep,
		FiO2:               m.Oxygen,
		Pressure:           m.Pressure,
		Vte:                m.Vte,
		BreathsPerMinute:   m.Bpm,
		InspirationTimeSec: m.IPhase,
		FlowOut:            m.FlowOut,
		Timestamp:          now,
	}
}

// loop contains the state of a single run of the control loop.
// It is only accessed by the goroutine of that run.
type loop struct {
	module *Module
	run    *loopRun

	settings     settings
	controller   controllers.Controller
	sampler      *sampler
	valves       *valves
	segmenter    segmenter
	analyzer     analyzer
	tracker      alarm.Tracker
	measurements measurements
}

func (m *Module) newLoop(run *loopRun) (*loop, error) {
	m.mu.Lock()
	working := settingsFrom(m.shared)
	m.mu.Unlock()
	working.updateTiming()

	controller, err := m.newController(working.waveform())
	if err != nil {
		return nil, fmt.Errorf("unable to create controller: %w", err)
	}

	return &loop{
		module:       m,
		run:          run,
		settings:     working,
		controller:   controller,
		sampler:      newSampler(m.hal, m.config.Sampling),
		valves:       newValves(m.hal, func() bool { return !run.isAbandoned() }),
		measurements: newMeasurements(),
	}, nil
}

func (m *Module) runLoop(run *loopRun) {
	l, err := m.newLoop(run)
	if err != nil {
		ui.Error("Unable to start control loop: %v", err)
		m.mu.Lock()
		if m.run == run {
			m.running = false
		}
		m.mu.Unlock()
		return
	}

	ui.Info("Control loop started")
	ticker := time.NewTicker(m.config.LoopUpdateTime)
	defer ticker.Stop()

	for {
		select {
		case <-run.ctx.Done():
			l.shutdown()
			return
		case <-ticker.C:
			if run.ctx.Err() != nil {
				continue
			}
			l.iterate(time.Now())
		}
	}
}

// shutdown publishes the final state of the run and puts the valves into standby
func (l *loop) shutdown() {
	if l.run.isAbandoned() {
		return
	}
	now := time.Now()
	l.controlsFromCopy()
	l.sensorToCopy(now)
	if l.module.logger != nil {
		if err := l.module.logger.Flush(); err != nil {
			ui.Warning("Unable to flush data log: %v", err)
		}
	}
	l.valves.Standby()
	ui.Info("Control loop stopped")
}

// stallThreshold is the longest plausible time between two iterations
func stallThreshold() time.Duration {
	return time.Duration(values.DefaultBreathPeriod() / 4 * float64(time.Second))
}

// iterate runs a single iteration of the control loop
func (l *loop) iterate(now time.Time) {
	m := l.module
	if l.run.isAbandoned() {
		return
	}

	m.mu.Lock()
	m.loopCounter++
	loopCounter := m.loopCounter
	lastContact := m.lastContact
	m.mu.Unlock()

	dt := l.controller.Dt(now)
	if dt > stallThreshold() {
		ui.Warning("Control loop update took too long: %v", dt)
		m.mu.Lock()
		m.stalls++
		m.mu.Unlock()
		dt = m.config.LoopUpdateTime
	}

	phase := l.controller.CyclePhase(now)
	l.measurements.reading = l.sampler.Sample(now, phase < l.settings.inspirationTime)
	l.segmenter.Integrate(dt, l.measurements.FlowOut)

	signalIn, signalOut := l.controller.Feed(l.measurements.Pressure, now)
	if l.run.isAbandoned() {
		return
	}

	verdict := m.alarms.Evaluate(&l.tracker, alarm.Reading{
		Now:         now,
		Pressure:    l.measurements.Pressure,
		FlowOut:     l.measurements.FlowOut,
		Oxygen:      l.measurements.Oxygen,
		LastContact: lastContact,
	})
	if verdict.ForceRelease {
		l.forceRelease()
		signalIn, signalOut = 0, 1
	}

	closed, boundary := l.segmenter.Observe(phase, l.measurements.Pressure, dt)
	if boundary != continued {
		l.startBreath(now, closed)
	}

	controls := command(signalIn, signalOut)
	if m.logger != nil && !l.run.isAbandoned() {
		snapshot := l.measurements.snapshot(now)
		snapshot.LoopCounter = loopCounter
		m.mu.Lock()
		snapshot.BreathCount = m.breathCount
		m.mu.Unlock()
		m.logger.StoreWaveformData(snapshot, controls)
	}

	l.valves.Set(controls.ControlSignalIn, controls.ControlSignalOut)

	if loopCounter%uint64(m.config.LoopsUntilUpdate) == 0 {
		l.controlsFromCopy()
		l.sensorToCopy(now)
	}
}

// startBreath archives and analyzes the breath that has just been closed
func (l *loop) startBreath(now time.Time, closed Waveform) {
	m := l.module

	m.mu.Lock()
	if l.run.isAbandoned() {
		m.mu.Unlock()
		return
	}
	m.breathCount = m.nextBreath
	m.nextBreath++
	breathCount := m.breathCount
	hasPrevious := m.archive.Len() > 0
	m.mu.Unlock()

	if closed != nil {
		if hasPrevious {
			l.measurements.breathMetrics = l.analyzer.analyze(closed)
			if m.logger != nil {
				derived := l.measurements.derived(breathCount)
				derived.Timestamp = now
				m.logger.StoreDerivedData(derived)
			}
		}
		m.mu.Lock()
		if !l.run.isAbandoned() {
			m.archive.Push(closed)
		}
		m.mu.Unlock()
	}

	l.sensorToCopy(now)

	if m.logger != nil && m.config.FlushEvery > 0 && breathCount%uint64(m.config.FlushEvery) == 0 {
		if err := m.logger.Flush(); err != nil {
			ui.Warning("Unable to flush data log: %v", err)
		}
		if err := m.logger.Rotate(); err != nil {
			ui.Warning("Unable to rotate data log: %v", err)
		}
	}
}

// forceRelease opens the expiratory and closes the inspiratory valve, repeatedly
func (l *loop) forceRelease() {
	m := l.module
	ui.Warning("High pressure of %.1f exceeded the limit for longer than %v, releasing pressure",
		l.measurements.Pressure, m.config.Alarms.CoughDuration)

	m.mu.Lock()
	m.forcedReleases++
	m.mu.Unlock()

	for i := 0; i < m.config.ForcedReleaseCycles; i++ {
		l.valves.Release()
		if m.config.ForcedReleasePause > 0 {
			time.Sleep(m.config.ForcedReleasePause)
		}
	}
}
