package hal

import (
	"fmt"

	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/util"
)

// FileHal reads and writes every channel from/to a file containing a single number,
// like the attributes of a sysfs device.
type FileHal struct {
	pressure   string
	flowEx     string
	oxygen     string
	setpointIn string
	setpointEx string
}

func NewFileHal(config configuration.FileHalConfig) (*FileHal, error) {
	paths := []*string{&config.Pressure, &config.FlowEx, &config.Oxygen, &config.SetpointIn, &config.SetpointEx}
	for _, path := range paths {
		expanded, err := util.ExpandPath(*path)
		if err != nil {
			return nil, fmt.Errorf("invalid channel path %s: %w", *path, err)
		}
		*path = expanded
	}

	return &FileHal{
		pressure:   config.Pressure,
		flowEx:     config.FlowEx,
		oxygen:     config.Oxygen,
		setpointIn: config.SetpointIn,
		setpointEx: config.SetpointEx,
	}, nil
}

func (h *FileHal) Pressure() (float64, error) {
	return util.ReadFloatFromFile(h.pressure)
}

func (h *FileHal) FlowEx() (float64, error) {
	return util.ReadFloatFromFile(h.flowEx)
}

func (h *FileHal) Oxygen() (float64, error) {
	return util.ReadFloatFromFile(h.oxygen)
}

func (h *FileHal) SetpointIn() (float64, error) {
	return util.ReadFloatFromFile(h.setpointIn)
}

func (h *FileHal) SetSetpointIn(value float64) error {
	if value < MinSetpointIn || value > MaxSetpointIn {
		return fmt.Errorf("inspiratory setpoint %v out of range [%d, %d]", value, MinSetpointIn, MaxSetpointIn)
	}
	return util.WriteFloatToFile(value, h.setpointIn)
}

func (h *FileHal) SetpointEx() (float64, error) {
	return util.ReadFloatFromFile(h.setpointEx)
}

func (h *FileHal) SetSetpointEx(value float64) error {
	return util.WriteFloatToFile(value, h.setpointEx)
}
