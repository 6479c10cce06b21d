package configuration

import "time"

type ControllerConfig struct {
	// Time interval between two iterations of the control loop.
	LoopUpdateTime time.Duration `json:"loopUpdateTime"`
	// Number of loop iterations between two synchronizations of the
	// control settings and sensor values with the coordinator.
	LoopsUntilUpdate int `json:"loopsUntilUpdate"`
	// Maximum number of breath waveforms kept in memory.
	RingBufferSize int `json:"ringBufferSize"`
	// Time to wait for a suspect control loop to exit on interrupt,
	// before it is abandoned and replaced.
	InterruptJoinTimeout time.Duration `json:"interruptJoinTimeout"`
}

type AlgorithmConfig struct {
	// Name of the control algorithm, one of: pid | predestined
	Type string `json:"type"`

	Pid         *PidAlgorithmConfig         `json:"pid,omitempty"`
	Predestined *PredestinedAlgorithmConfig `json:"predestined,omitempty"`
}

type PidAlgorithmConfig struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

type PredestinedAlgorithmConfig struct {
	// Opening of the inspiratory valve during inspiration, in percent
	InletDuty float64 `json:"inletDuty"`
}
