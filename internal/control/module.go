package control

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/hal"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
)

// DataLogger persists the data of the control loop.
// Implementations must not block the caller.
type DataLogger interface {
	StoreWaveformData(sensors values.SensorValues, controls values.ControlValues)
	StoreDerivedData(derived values.DerivedValues)
	StoreControlCommand(setting values.ControlSetting)
	Flush() error
	Rotate() error
	Close() error
}

// ControllerFactory creates a new controller for the given target waveform
type ControllerFactory func(waveform controllers.BreathWaveform) (controllers.Controller, error)

type Config struct {
	LoopUpdateTime       time.Duration
	LoopsUntilUpdate     int
	RingBufferSize       int
	InterruptJoinTimeout time.Duration
	// FlushEvery is the number of breaths between two flushes of the data logger
	FlushEvery int

	ForcedReleaseCycles int
	ForcedReleasePause  time.Duration

	Alarms     alarm.Config
	AlarmRules alarm.Rules
	Sampling   SamplingConfig
}

var DefaultConfig = Config{
	LoopUpdateTime:       10 * time.Millisecond,
	LoopsUntilUpdate:     10,
	RingBufferSize:       100,
	InterruptJoinTimeout: time.Second,
	FlushEvery:           10,
	ForcedReleaseCycles:  5,
	ForcedReleasePause:   20 * time.Millisecond,
	Alarms:               alarm.DefaultConfig,
	AlarmRules:           alarm.DefaultRules,
	Sampling:             DefaultSamplingConfig,
}

// Statistics is a view of the module for monitoring. Reading it does not count as
// contact of the coordinator.
type Statistics struct {
	Running           bool
	LoopCounter       uint64
	BreathCount       uint64
	Sensors           values.SensorValues
	Alarms            *alarm.Active
	HighPressureLimit float64
	// PressureSlope is the moving average of dP/dt in cmH2O/s
	PressureSlope  float64
	ForcedReleases uint64
	Stalls         uint64
	AbandonedRuns  uint64
}

// loopRun is a single run of the control loop goroutine
type loopRun struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	// set when the run did not exit in time, it must not touch any shared state afterward
	abandoned atomic.Bool
}

func newLoopRun() *loopRun {
	ctx, cancel := context.WithCancel(context.Background())
	return &loopRun{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (r *loopRun) isAbandoned() bool {
	return r.abandoned.Load()
}

func (r *loopRun) exited() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Module runs the control loop of the ventilator and exchanges settings,
// measurements and alarms with the coordinator.
type Module struct {
	config        Config
	hal           hal.Hal
	newController ControllerFactory
	logger        DataLogger
	alarms        *alarm.Engine

	// lifecycle serializes Start, Stop, Interrupt and Close, so at most one run is alive
	lifecycle sync.Mutex

	mu sync.Mutex
	// everything below is guarded by mu
	shared        map[values.ValueName]values.ControlSetting
	sensors       values.SensorValues
	lastContact   time.Time
	running       bool
	run           *loopRun
	archive       *archive
	loopCounter   uint64
	breathCount   uint64
	nextBreath    uint64
	pressureSlope float64

	forcedReleases uint64
	stalls         uint64
	abandonedRuns  uint64
}

// NewModule creates a stopped control module. logger may be nil, which disables data logging.
func NewModule(config Config, h hal.Hal, newController ControllerFactory, logger DataLogger) *Module {
	now := time.Now()
	m := &Module{
		config:        config,
		hal:           h,
		newController: newController,
		logger:        logger,
		shared:        defaultSharedSettings(now),
		sensors:       values.NewSensorValues(),
		lastContact:   now,
		archive:       newArchive(config.RingBufferSize),
	}
	rules := config.AlarmRules
	if rules == nil {
		rules = alarm.DefaultRules
	}
	m.alarms = alarm.NewEngine(&m.mu, config.Alarms, rules)
	return m
}

func (m *Module) touch(now time.Time) {
	m.mu.Lock()
	m.lastContact = now
	m.mu.Unlock()
}

// GetSensors returns the most recently published measurements
func (m *Module) GetSensors() values.SensorValues {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact = time.Now()
	return m.sensors
}

// GetAlarms returns the active alarms, nil if there are none
func (m *Module) GetAlarms() *alarm.Active {
	m.touch(time.Now())
	return m.alarms.Active()
}

// ClearAlarm acknowledges an active technical alarm
func (m *Module) ClearAlarm(alarmType alarm.Type) bool {
	m.touch(time.Now())
	return m.alarms.Clear(alarmType)
}

// GetPastWaveforms hands the archived breath waveforms over to the caller, oldest first.
// The most recent waveform stays in the archive.
func (m *Module) GetPastWaveforms() []Waveform {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact = time.Now()
	return m.archive.Drain()
}

// GetHeartbeat returns the loop counter
func (m *Module) GetHeartbeat() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact = time.Now()
	return m.loopCounter
}

func (m *Module) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact = time.Now()
	return m.running
}

// Start spawns the control loop, if it is not running already
func (m *Module) Start() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	m.lastContact = time.Now()
	previous := m.run
	m.mu.Unlock()

	if previous != nil && !previous.exited() {
		if previous.ctx.Err() == nil {
			ui.Info("Control loop is already running")
			return
		}
		// a stopped run that has not exited yet
		if !m.join(previous) {
			ui.Error("Control loop did not exit within %v, abandoning it", m.config.InterruptJoinTimeout)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.spawnLocked()
}

// Stop signals the control loop to exit at the start of its next iteration.
// It does not wait for the loop to exit, but waits for a pending Interrupt to finish.
func (m *Module) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact = time.Now()

	m.running = false
	if m.run != nil {
		m.run.cancel()
	}
}

// Interrupt replaces a control loop that appears to be hung. The current run is cancelled
// and given InterruptJoinTimeout to exit, otherwise it is abandoned.
// A fresh run is started in any case.
func (m *Module) Interrupt() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	m.lastContact = time.Now()
	previous := m.run
	m.running = false
	m.mu.Unlock()

	if previous != nil && !m.join(previous) {
		ui.Error("Control loop did not exit within %v, abandoning it", m.config.InterruptJoinTimeout)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.spawnLocked()
	ui.Warning("Control loop has been restarted")
}

// join cancels the given run and waits for it to exit.
// Returns false if the run has been abandoned.
func (m *Module) join(run *loopRun) bool {
	run.cancel()
	if run.isAbandoned() {
		return run.exited()
	}
	select {
	case <-run.done:
		return true
	case <-time.After(m.config.InterruptJoinTimeout):
		run.abandoned.Store(true)
		m.mu.Lock()
		m.abandonedRuns++
		m.mu.Unlock()
		return false
	}
}

func (m *Module) spawnLocked() {
	run := newLoopRun()
	m.run = run
	go func() {
		defer close(run.done)
		m.runLoop(run)
	}()
}

// Close stops the control loop, puts the valves into standby and closes the data logger
func (m *Module) Close() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	m.running = false
	run := m.run
	m.mu.Unlock()

	if run != nil && !m.join(run) {
		ui.Error("Control loop did not exit within %v, abandoning it", m.config.InterruptJoinTimeout)
	}

	newValves(m.hal, nil).Standby()

	if m.logger != nil {
		return m.logger.Close()
	}
	return nil
}

// Statistics returns a snapshot of the state of the module
func (m *Module) Statistics() Statistics {
	alarms := m.alarms.Active()
	limit := m.alarms.HighPressureLimit()

	m.mu.Lock()
	defer m.mu.Unlock()
	return Statistics{
		Running:           m.running,
		LoopCounter:       m.loopCounter,
		BreathCount:       m.breathCount,
		Sensors:           m.sensors,
		Alarms:            alarms,
		HighPressureLimit: limit,
		PressureSlope:     m.pressureSlope,
		ForcedReleases:    m.forcedReleases,
		Stalls:            m.stalls,
		AbandonedRuns:     m.abandonedRuns,
	}
}
