package alarm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	HighPressure      Type = "HIGH_PRESSURE"
	SensorsStuck      Type = "SENSORS_STUCK"
	BadSensorReadings Type = "BAD_SENSOR_READINGS"
	MissedHeartbeat   Type = "MISSED_HEARTBEAT"
)

type Severity string

const (
	SeverityHigh      Severity = "HIGH"
	SeverityMedium    Severity = "MEDIUM"
	SeverityLow       Severity = "LOW"
	SeverityTechnical Severity = "TECHNICAL"
)

// Alarm is a single alarm condition, as raised by the Engine
type Alarm struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Severity  Severity  `json:"severity"`
	StartTime time.Time `json:"startTime"`
	Value     float64   `json:"value"`
	Message   string    `json:"message,omitempty"`
}

func New(alarmType Type, severity Severity, start time.Time, value float64, message string) Alarm {
	return Alarm{
		ID:        uuid.NewString(),
		Type:      alarmType,
		Severity:  severity,
		StartTime: start,
		Value:     value,
		Message:   message,
	}
}

func (a Alarm) String() string {
	if len(a.Message) > 0 {
		return fmt.Sprintf("%s (%s): %s", a.Type, a.Severity, a.Message)
	}
	return fmt.Sprintf("%s (%s)", a.Type, a.Severity)
}

// Active is the set of currently active alarms.
type Active struct {
	HighPressure *Alarm  `json:"highPressure,omitempty"`
	Technical    []Alarm `json:"technical,omitempty"`
}
