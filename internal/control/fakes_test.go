package control

import (
	"sync"
	"time"

	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/values"
)

type fakeHal struct {
	mu sync.Mutex

	pressure float64
	flowEx   float64
	oxygen   float64

	pressureErr error

	setpointIn float64
	setpointEx float64
	inWrites   []float64
	exWrites   []float64
}

func newFakeHal() *fakeHal {
	return &fakeHal{
		pressure:   10,
		oxygen:     40,
		setpointEx: 1,
	}
}

func (h *fakeHal) Pressure() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pressure, h.pressureErr
}

func (h *fakeHal) FlowEx() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flowEx, nil
}

func (h *fakeHal) Oxygen() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.oxygen, nil
}

func (h *fakeHal) SetpointIn() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setpointIn, nil
}

func (h *fakeHal) SetSetpointIn(value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setpointIn = value
	h.inWrites = append(h.inWrites, value)
	return nil
}

func (h *fakeHal) SetpointEx() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setpointEx, nil
}

func (h *fakeHal) SetSetpointEx(value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setpointEx = value
	h.exWrites = append(h.exWrites, value)
	return nil
}

func (h *fakeHal) setPressure(pressure float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pressure = pressure
}

func (h *fakeHal) setFlowEx(flow float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flowEx = flow
}

func (h *fakeHal) setOxygen(oxygen float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.oxygen = oxygen
}

func (h *fakeHal) writes() (in []float64, ex []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.inWrites...), append([]float64(nil), h.exWrites...)
}

func (h *fakeHal) resetWrites() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inWrites = nil
	h.exWrites = nil
}

// fakeController returns the given phases in order, afterward the phase
// grows by 0.01 per call and wraps at 1.
type fakeController struct {
	mu sync.Mutex

	phases []float64
	calls  int
	phase  float64

	signalIn  float64
	signalOut float64
	dt        time.Duration

	// Feed blocks until block is closed, if set
	block     chan struct{}
	// Feed sleeps for delay before it returns
	delay     time.Duration
	waveforms []controllers.BreathWaveform
}

func newFakeController() *fakeController {
	return &fakeController{
		signalIn:  50,
		signalOut: 0,
		dt:        10 * time.Millisecond,
	}
}

func (c *fakeController) Feed(pressure float64, now time.Time) (float64, float64) {
	if c.block != nil {
		<-c.block
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signalIn, c.signalOut
}

func (c *fakeController) CyclePhase(now time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls < len(c.phases) {
		c.phase = c.phases[c.calls]
	} else {
		c.phase += 0.01
		if c.phase >= 1 {
			c.phase = 0
		}
	}
	c.calls++
	return c.phase
}

func (c *fakeController) Dt(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}

func (c *fakeController) SetWaveform(waveform controllers.BreathWaveform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waveforms = append(c.waveforms, waveform)
}

type fakeLogger struct {
	mu sync.Mutex

	waveformData []values.SensorValues
	controls     []values.ControlValues
	derivedData  []values.DerivedValues
	commands     []values.ControlSetting
	flushes      int
	rotations    int
	closed       bool
}

func (l *fakeLogger) StoreWaveformData(sensors values.SensorValues, controls values.ControlValues) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waveformData = append(l.waveformData, sensors)
	l.controls = append(l.controls, controls)
}

func (l *fakeLogger) StoreDerivedData(derived values.DerivedValues) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.derivedData = append(l.derivedData, derived)
}

func (l *fakeLogger) StoreControlCommand(setting values.ControlSetting) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, setting)
}

func (l *fakeLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushes++
	return nil
}

func (l *fakeLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotations++
	return nil
}

func (l *fakeLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func createTestConfig() Config {
	return Config{
		LoopUpdateTime:       time.Millisecond,
		LoopsUntilUpdate:     10,
		RingBufferSize:       3,
		InterruptJoinTimeout: 50 * time.Millisecond,
		FlushEvery:           2,
		ForcedReleaseCycles:  5,
		ForcedReleasePause:   0,
		Alarms:               alarm.DefaultConfig,
		AlarmRules:           alarm.DefaultRules,
		Sampling: SamplingConfig{
			OxygenInterval:         5 * time.Second,
			PressureWindowSize:     1,
			FlowBaselineWindowSize: 10,
			FlowBaselinePercentile: 5,
		},
	}
}

func createTestModule(h *fakeHal, controller controllers.Controller, logger DataLogger) *Module {
	factory := func(waveform controllers.BreathWaveform) (controllers.Controller, error) {
		return controller, nil
	}
	return NewModule(createTestConfig(), h, factory, logger)
}
