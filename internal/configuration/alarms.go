package configuration

import "time"

type AlarmsConfig struct {
	// Time the pressure may exceed the high pressure limit before a release is forced.
	CoughDuration time.Duration `json:"coughDuration"`
	// Maximum time without contact to the coordinator.
	HeartbeatTimeout time.Duration `json:"heartbeatTimeout"`
	// Time a sensor may report the exact same value before it is considered stuck.
	StuckSensorDuration time.Duration `json:"stuckSensorDuration"`
	// Highest plausible expiratory flow, in l/s
	MaxFlow float64 `json:"maxFlow"`
	// Highest plausible airway pressure, in cmH2O
	MaxPressure float64 `json:"maxPressure"`
	// Number of valve commands sent on a forced pressure release
	ForcedReleaseCycles int `json:"forcedReleaseCycles"`
	// Pause between two forced release commands
	ForcedReleasePause time.Duration `json:"forcedReleasePause"`
	// Limits overrides the default limit of the given alarm types
	Limits map[string]float64 `json:"limits"`
}
