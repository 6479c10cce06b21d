package control

import (
	"errors"
	"fmt"
	"time"

	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/qdm12/reprint"
)

// fallbackCycleDuration is used when the breaths per minute do not result in a valid cycle duration
const fallbackCycleDuration = 20.0

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrInvalidValue   = errors.New("invalid control value")
)

// settings is the working copy of the control settings, owned by the control loop
type settings struct {
	pip             float64
	pipTime         float64
	peep            float64
	peepTime        float64
	bpm             float64
	inspirationTime float64

	// derived timing, in seconds
	cycleDuration float64
	ePhase        float64
	tPeep         float64
}

func settingsFrom(shared map[values.ValueName]values.ControlSetting) settings {
	return settings{
		pip:             shared[values.PIP].Value,
		pipTime:         shared[values.PIPTime].Value,
		peep:            shared[values.PEEP].Value,
		peepTime:        shared[values.PEEPTime].Value,
		bpm:             shared[values.BreathsPerMinute].Value,
		inspirationTime: shared[values.InspirationTimeSec].Value,
	}
}

// updateTiming recomputes the timing of a breath from the settings
func (s *settings) updateTiming() {
	if s.bpm > 0 && values.IsFinite(s.bpm) {
		s.cycleDuration = 60 / s.bpm
	} else {
		ui.Warning("Invalid breaths per minute %v, using a cycle duration of %vs", s.bpm, fallbackCycleDuration)
		s.cycleDuration = fallbackCycleDuration
	}
	s.ePhase = s.cycleDuration - s.inspirationTime
	s.tPeep = s.ePhase - s.peepTime
}

func (s settings) waveform() controllers.BreathWaveform {
	return controllers.NewBreathWaveform(s.peep, s.pip, s.pipTime, s.inspirationTime, s.peepTime, s.cycleDuration)
}

func defaultSharedSettings(now time.Time) map[values.ValueName]values.ControlSetting {
	result := map[values.ValueName]values.ControlSetting{}
	for _, name := range values.ControlNames {
		result[name] = values.ControlSetting{
			Name:      name,
			Value:     values.Controls[name].Default,
			Timestamp: now,
		}
	}
	return result
}

// SetControl updates the shared copy of a control setting. The control loop picks
// up the change with its next synchronization.
// If the setting is PIP and has a MaxValue, it replaces the high pressure alarm limit.
func (m *Module) SetControl(setting values.ControlSetting) error {
	now := time.Now()
	m.touch(now)

	if !values.IsControl(setting.Name) {
		ui.Warning("Rejected unknown control setting: %s", setting.Name)
		return fmt.Errorf("%w: %s", ErrUnknownControl, setting.Name)
	}
	if !values.IsFinite(setting.Value) {
		ui.Warning("Rejected value %v for control %s", setting.Value, setting.Name)
		return fmt.Errorf("%w: %v for %s", ErrInvalidValue, setting.Value, setting.Name)
	}
	control := values.Controls[setting.Name]
	if setting.Value < control.Min || setting.Value > control.Max {
		ui.Warning("Value %v of %s is outside of the usual range [%v, %v]", setting.Value, setting.Name, control.Min, control.Max)
	}

	timestamp := setting.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	m.mu.Lock()
	m.shared[setting.Name] = values.ControlSetting{
		Name:      setting.Name,
		Value:     setting.Value,
		Timestamp: timestamp,
	}
	m.mu.Unlock()

	if setting.Name == values.PIP && setting.MaxValue != nil {
		ui.Info("Setting high pressure alarm limit to %v", *setting.MaxValue)
		m.alarms.SetHighPressureLimit(*setting.MaxValue)
	}

	if m.logger != nil {
		// the logger may hold on to the setting after this call returns
		command, ok := reprint.This(setting).(values.ControlSetting)
		if ok {
			m.logger.StoreControlCommand(command)
		}
	}
	return nil
}

// GetControl returns a copy of the shared value of the given control setting,
// including its allowed range.
func (m *Module) GetControl(name values.ValueName) (values.ControlSetting, error) {
	now := time.Now()
	m.mu.Lock()
	m.lastContact = now
	setting, ok := m.shared[name]
	m.mu.Unlock()

	if !ok {
		return values.ControlSetting{}, fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}

	control := values.Controls[name]
	minValue, maxValue := control.Min, control.Max
	if name == values.PIP {
		maxValue = m.alarms.HighPressureLimit()
	}
	setting.MinValue = &minValue
	setting.MaxValue = &maxValue
	return setting, nil
}

// controlsFromCopy replaces the working settings of the loop with the shared copy
func (l *loop) controlsFromCopy() {
	m := l.module
	m.mu.Lock()
	next := settingsFrom(m.shared)
	m.mu.Unlock()

	changed := next.pip != l.settings.pip || next.pipTime != l.settings.pipTime ||
		next.peep != l.settings.peep || next.peepTime != l.settings.peepTime || next.bpm != l.settings.bpm ||
		next.inspirationTime != l.settings.inspirationTime
	next.updateTiming()
	l.settings = next

	if !changed {
		return
	}
	if aware, ok := l.controller.(controllers.WaveformAware); ok {
		aware.SetWaveform(l.settings.waveform())
	}
}

// sensorToCopy publishes the current measurements of the loop
func (l *loop) sensorToCopy(now time.Time) {
	m := l.module
	snapshot := l.measurements.snapshot(now)

	m.mu.Lock()
	defer m.mu.Unlock()
	if l.run.isAbandoned() {
		return
	}
	snapshot.LoopCounter = m.loopCounter
	snapshot.BreathCount = m.breathCount
	m.sensors = snapshot
	m.pressureSlope = l.segmenter.Slope()
}
