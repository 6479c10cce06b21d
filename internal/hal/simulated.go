package hal

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/util"
)

// bypassFlow is the flow in l/s that leaves through the expiratory valve
// without passing the patient, while the inspiratory valve is open.
const bypassFlow = 0.05

// maxCatchUp limits the simulated time after a long pause between two calls
const maxCatchUp = 10 * time.Second

// SimulatedHal models a single compartment lung, connected to the
// inspiratory and expiratory valve.
type SimulatedHal struct {
	config configuration.SimulatedHalConfig
	now    func() time.Time
	noise  func() float64

	mu         sync.Mutex
	lastUpdate time.Time
	// volume above functional residual capacity, in l
	volume     float64
	outflow    float64
	setpointIn float64
	setpointEx float64
}

func NewSimulatedHal(config configuration.SimulatedHalConfig) *SimulatedHal {
	return &SimulatedHal{
		config:     config,
		now:        time.Now,
		noise:      rand.NormFloat64,
		setpointEx: SetpointExOpen,
	}
}

// advance integrates the lung model up to the current time
func (h *SimulatedHal) advance() {
	now := h.now()
	if h.lastUpdate.IsZero() {
		h.lastUpdate = now
		return
	}

	if now.Sub(h.lastUpdate) > maxCatchUp {
		h.lastUpdate = now.Add(-maxCatchUp)
	}

	step := h.config.Step
	if step <= 0 {
		step = time.Millisecond
	}
	for h.lastUpdate.Before(now) {
		dt := now.Sub(h.lastUpdate)
		if dt > step {
			dt = step
		}
		inflow := h.setpointIn / MaxSetpointIn * h.config.MaxInflow
		h.outflow = h.setpointEx * h.alveolarPressure() / h.config.Resistance
		h.volume = util.Coerce(h.volume+(inflow-h.outflow)*dt.Seconds(), 0, 10)
		h.lastUpdate = h.lastUpdate.Add(dt)
	}
}

func (h *SimulatedHal) alveolarPressure() float64 {
	return h.volume / h.config.Compliance
}

func (h *SimulatedHal) withNoise(value float64) float64 {
	return value + h.noise()*h.config.Noise
}

func (h *SimulatedHal) Pressure() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advance()
	return h.withNoise(h.alveolarPressure()), nil
}

func (h *SimulatedHal) FlowEx() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advance()
	flow := h.outflow
	if h.setpointEx > 0 && h.setpointIn > 0 {
		flow += bypassFlow
	}
	// l/s -> l/min
	return util.Coerce(h.withNoise(flow*60), 0, 1000), nil
}

func (h *SimulatedHal) Oxygen() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return util.Coerce(h.withNoise(h.config.Oxygen), 0, 100), nil
}

func (h *SimulatedHal) SetpointIn() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setpointIn, nil
}

func (h *SimulatedHal) SetSetpointIn(value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advance()
	h.setpointIn = util.Coerce(value, MinSetpointIn, MaxSetpointIn)
	return nil
}

func (h *SimulatedHal) SetpointEx() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setpointEx, nil
}

func (h *SimulatedHal) SetSetpointEx(value float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advance()
	h.setpointEx = util.Coerce(value, SetpointExClosed, SetpointExOpen)
	return nil
}
