package hal

import (
	"fmt"

	"github.com/markusressel/vent2go/internal/configuration"
)

const (
	MinSetpointIn = 0
	MaxSetpointIn = 100

	SetpointExClosed = 0
	SetpointExOpen   = 1
)

// Hal is the hardware abstraction of the ventilator
type Hal interface {
	// Pressure returns the airway pressure in cmH2O
	Pressure() (float64, error)
	// FlowEx returns the expiratory flow in l/min
	FlowEx() (float64, error)
	// Oxygen returns the oxygen concentration in percent
	Oxygen() (float64, error)

	// SetpointIn returns the opening of the inspiratory valve, in percent
	SetpointIn() (float64, error)
	SetSetpointIn(value float64) error

	// SetpointEx returns the state of the expiratory valve, 0 closed and 1 open
	SetpointEx() (float64, error)
	SetSetpointEx(value float64) error
}

func New(config configuration.HalConfig) (Hal, error) {
	switch config.Type {
	case configuration.HalTypeFile:
		if config.File == nil {
			return nil, fmt.Errorf("missing file hal configuration")
		}
		return NewFileHal(*config.File)
	case configuration.HalTypeSimulated:
		if config.Simulated == nil {
			return nil, fmt.Errorf("missing simulated hal configuration")
		}
		return NewSimulatedHal(*config.Simulated), nil
	}
	return nil, fmt.Errorf("no matching hal type: %s", config.Type)
}
