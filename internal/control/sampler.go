package control

import (
	"math"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/vent2go/internal/hal"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/util"
)

type SamplingConfig struct {
	OxygenInterval         time.Duration
	PressureWindowSize     int
	FlowBaselineWindowSize int
	FlowBaselinePercentile float64
}

var DefaultSamplingConfig = SamplingConfig{
	OxygenInterval:         5 * time.Second,
	PressureWindowSize:     5,
	FlowBaselineWindowSize: 500,
	FlowBaselinePercentile: 5,
}

// reading contains the (filtered) sensor values of a single loop iteration
type reading struct {
	// Pressure is the mean of the most recent pressure readings, in cmH2O
	Pressure float64
	// FlowOut is the expiratory flow through the patient in l/s, 0 during inspiration
	FlowOut float64
	// Oxygen in percent
	Oxygen float64
}

// sampler reads the sensors of the hal once per loop iteration
type sampler struct {
	hal    hal.Hal
	config SamplingConfig

	pressureWindow *rolling.PointPolicy
	flowWindow     *rolling.PointPolicy
	scratch        []float64

	current      reading
	oxygenReadAt time.Time

	// channels that are currently failing, to log errors only once
	failing map[string]bool
}

func newSampler(h hal.Hal, config SamplingConfig) *sampler {
	return &sampler{
		hal:            h,
		config:         config,
		pressureWindow: util.CreateRollingWindow(config.PressureWindowSize),
		flowWindow:     util.CreateRollingWindow(config.FlowBaselineWindowSize),
		current: reading{
			Pressure: math.NaN(),
			Oxygen:   math.NaN(),
		},
		failing: map[string]bool{},
	}
}

// Sample reads the sensors. The (slow) oxygen sensor is only read during expiration
// and at most once per OxygenInterval, flow is only sampled during expiration.
func (s *sampler) Sample(now time.Time, inspiration bool) reading {
	if pressure, ok := s.read("pressure", s.hal.Pressure); ok {
		s.pressureWindow.Append(pressure)
		s.current.Pressure = util.GetWindowAvg(s.pressureWindow)
	}

	if s.oxygenReadAt.IsZero() || (!inspiration && now.Sub(s.oxygenReadAt) > s.config.OxygenInterval) {
		if oxygen, ok := s.read("oxygen", s.hal.Oxygen); ok {
			s.current.Oxygen = oxygen
		}
		s.oxygenReadAt = now
	}

	if inspiration {
		s.current.FlowOut = 0
		return s.current
	}

	if flow, ok := s.read("flow", s.hal.FlowEx); ok {
		// l/min -> l/s
		flow = flow / 60
		s.flowWindow.Append(flow)
		// flow that bypasses the patient
		var baseline float64
		baseline, s.scratch = util.GetWindowPercentile(s.flowWindow, s.config.FlowBaselinePercentile, s.scratch)
		s.current.FlowOut = flow - baseline
	}
	return s.current
}

func (s *sampler) read(channel string, read func() (float64, error)) (float64, bool) {
	value, err := read()
	if err != nil {
		if !s.failing[channel] {
			ui.Error("Unable to read %s sensor, keeping last value: %v", channel, err)
			s.failing[channel] = true
		}
		return 0, false
	}
	if s.failing[channel] {
		ui.Info("Reading %s sensor succeeded again", channel)
		delete(s.failing, channel)
	}
	return value, true
}
