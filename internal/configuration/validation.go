package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/ui"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	validators := []func(config *Configuration) error{
		validateController,
		validateAlgorithm,
		validateAlarms,
		validateHal,
		validateSampling,
		validateLogging,
		validateServices,
	}
	for _, validate := range validators {
		if err := validate(config); err != nil {
			return err
		}
	}
	return nil
}

func validateController(config *Configuration) error {
	c := config.Controller
	if c.LoopUpdateTime <= 0 {
		return errors.New(fmt.Sprintf("Controller: loopUpdateTime must be positive, was %v", c.LoopUpdateTime))
	}
	if c.LoopsUntilUpdate < 1 {
		return errors.New(fmt.Sprintf("Controller: loopsUntilUpdate must be >= 1, was %d", c.LoopsUntilUpdate))
	}
	if c.RingBufferSize < 1 {
		return errors.New(fmt.Sprintf("Controller: ringBufferSize must be >= 1, was %d", c.RingBufferSize))
	}
	if c.InterruptJoinTimeout <= 0 {
		return errors.New(fmt.Sprintf("Controller: interruptJoinTimeout must be positive, was %v", c.InterruptJoinTimeout))
	}
	return nil
}

func validateAlgorithm(config *Configuration) error {
	a := config.Algorithm
	supportedTypes := controllers.Algorithms()
	if !slices.Contains(supportedTypes, a.Type) {
		return errors.New(fmt.Sprintf("Algorithm: unsupported type '%s', use one of: %s", a.Type, strings.Join(supportedTypes, " | ")))
	}

	switch a.Type {
	case controllers.TypePid:
		if a.Pid == nil {
			return errors.New("Algorithm pid: sub-configuration is missing")
		}
		if a.Pid.P == 0 && a.Pid.I == 0 && a.Pid.D == 0 {
			return errors.New("Algorithm pid: all PID constants are zero")
		}
	case controllers.TypePredestined:
		if a.Predestined == nil {
			return errors.New("Algorithm predestined: sub-configuration is missing")
		}
		if a.Predestined.InletDuty <= 0 || a.Predestined.InletDuty > 100 {
			return errors.New(fmt.Sprintf("Algorithm predestined: inletDuty must be in (0, 100], was %v", a.Predestined.InletDuty))
		}
	}
	return nil
}

func validateAlarms(config *Configuration) error {
	a := config.Alarms
	if _, err := alarm.DefaultRules.WithLimits(a.Limits); err != nil {
		return fmt.Errorf("Alarms: %w", err)
	}
	if a.MaxFlow <= 0 || a.MaxPressure <= 0 {
		return errors.New("Alarms: maxFlow and maxPressure must be positive")
	}
	if a.ForcedReleaseCycles < 1 {
		return errors.New(fmt.Sprintf("Alarms: forcedReleaseCycles must be >= 1, was %d", a.ForcedReleaseCycles))
	}
	if a.HeartbeatTimeout <= config.Controller.LoopUpdateTime {
		ui.Warning("Alarms: heartbeatTimeout (%v) is not longer than the loop update time (%v)", a.HeartbeatTimeout, config.Controller.LoopUpdateTime)
	}
	return nil
}

func validateHal(config *Configuration) error {
	h := config.Hal
	supportedTypes := []string{HalTypeFile, HalTypeSimulated}
	if !slices.Contains(supportedTypes, h.Type) {
		return errors.New(fmt.Sprintf("Hal: unsupported type '%s', use one of: %s", h.Type, strings.Join(supportedTypes, " | ")))
	}

	switch h.Type {
	case HalTypeFile:
		if h.File == nil {
			return errors.New("Hal file: sub-configuration is missing")
		}
		channels := map[string]string{
			"pressure":   h.File.Pressure,
			"flowEx":     h.File.FlowEx,
			"oxygen":     h.File.Oxygen,
			"setpointIn": h.File.SetpointIn,
			"setpointEx": h.File.SetpointEx,
		}
		for name, path := range channels {
			if len(path) <= 0 {
				return errors.New(fmt.Sprintf("Hal file: missing path for channel '%s'", name))
			}
		}
	case HalTypeSimulated:
		s := h.Simulated
		if s == nil {
			return errors.New("Hal simulated: sub-configuration is missing")
		}
		if s.Compliance <= 0 || s.Resistance <= 0 || s.Step <= 0 {
			return errors.New("Hal simulated: compliance, resistance and step must be positive")
		}
	}
	return nil
}

func validateSampling(config *Configuration) error {
	s := config.Sampling
	if s.PressureWindowSize < 1 || s.FlowBaselineWindowSize < 1 {
		return errors.New("Sampling: window sizes must be >= 1")
	}
	if s.FlowBaselinePercentile < 0 || s.FlowBaselinePercentile > 100 {
		return errors.New(fmt.Sprintf("Sampling: flowBaselinePercentile must be in [0, 100], was %v", s.FlowBaselinePercentile))
	}
	return nil
}

func validateLogging(config *Configuration) error {
	l := config.Logging
	if !l.Enabled.Get() {
		return nil
	}
	if len(config.DbPath) <= 0 {
		return errors.New("Logging: dbPath is missing")
	}
	if l.FlushEvery < 1 {
		return errors.New(fmt.Sprintf("Logging: flushEvery must be >= 1, was %d", l.FlushEvery))
	}
	if l.BufferSize < 1 {
		return errors.New(fmt.Sprintf("Logging: bufferSize must be >= 1, was %d", l.BufferSize))
	}
	return nil
}

func validateServices(config *Configuration) error {
	ports := map[string]int{}
	if config.Api.Enabled {
		ports["api"] = config.Api.Port
	}
	if config.Statistics.Enabled {
		ports["statistics"] = config.Statistics.Port
	}
	if config.Profiling.Enabled {
		ports["profiling"] = config.Profiling.Port
	}
	seen := map[int]string{}
	for name, port := range ports {
		if port <= 0 || port >= 65535 {
			return errors.New(fmt.Sprintf("%s: invalid port %d", name, port))
		}
		if other, ok := seen[port]; ok {
			return errors.New(fmt.Sprintf("%s and %s use the same port %d", other, name, port))
		}
		seen[port] = name
	}

	if config.Mqtt.Enabled && len(config.Mqtt.Broker) <= 0 {
		return errors.New("Mqtt: broker is missing")
	}
	if config.Mqtt.Qos > 2 {
		return errors.New(fmt.Sprintf("Mqtt: invalid qos %d", config.Mqtt.Qos))
	}

	w := config.Watchdog
	if w.Enabled && (w.PollInterval <= 0 || w.StallTimeout <= w.PollInterval) {
		return errors.New("Watchdog: stallTimeout must be longer than a positive pollInterval")
	}
	return nil
}
