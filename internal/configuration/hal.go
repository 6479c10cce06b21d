package configuration

import "time"

const (
	HalTypeFile      = "file"
	HalTypeSimulated = "simulated"
)

type HalConfig struct {
	// one of: file | simulated
	Type string `json:"type"`

	File      *FileHalConfig      `json:"file,omitempty"`
	Simulated *SimulatedHalConfig `json:"simulated,omitempty"`
}

// FileHalConfig maps each channel of the hardware to a file, f.ex. in sysfs
type FileHalConfig struct {
	Pressure   string `json:"pressure"`
	FlowEx     string `json:"flowEx"`
	Oxygen     string `json:"oxygen"`
	SetpointIn string `json:"setpointIn"`
	SetpointEx string `json:"setpointEx"`
}

type SimulatedHalConfig struct {
	// Compliance of the simulated lung, in l/cmH2O
	Compliance float64 `json:"compliance"`
	// Resistance of the airways, in cmH2O/(l/s)
	Resistance float64 `json:"resistance"`
	// Flow through the fully opened inspiratory valve, in l/s
	MaxInflow float64 `json:"maxInflow"`
	// Oxygen concentration of the supplied gas, in percent
	Oxygen float64 `json:"oxygen"`
	// Standard deviation of the noise added to each reading
	Noise float64 `json:"noise"`
	// Simulation step size
	Step time.Duration `json:"step"`
}

type SamplingConfig struct {
	// Minimum time between two readings of the (slow) oxygen sensor.
	OxygenInterval time.Duration `json:"oxygenInterval"`
	// Number of pressure readings that are averaged.
	PressureWindowSize int `json:"pressureWindowSize"`
	// Number of flow readings used to estimate the bypass flow baseline.
	FlowBaselineWindowSize int `json:"flowBaselineWindowSize"`
	// Percentile of the flow readings used as baseline.
	FlowBaselinePercentile float64 `json:"flowBaselinePercentile"`
}
