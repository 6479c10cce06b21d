package log

import (
	"encoding/json"
	"errors"

	"github.com/markusressel/vent2go/internal/persistence"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/util"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/spf13/cobra"
)

type export struct {
	Waveforms []persistence.WaveformRecord `json:"waveforms"`
	Derived   []values.DerivedValues       `json:"derived"`
	Controls  []values.ControlSetting      `json:"controls"`
}

var exportCmd = &cobra.Command{
	Use:   "export <target>",
	Short: "Export the data log as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		path := dataLogPath()

		var result export
		var err error
		if result.Waveforms, err = persistence.LoadWaveformData(path, limit); ignoreNotFound(err) != nil {
			return err
		}
		if result.Derived, err = persistence.LoadDerivedData(path, limit); ignoreNotFound(err) != nil {
			return err
		}
		if result.Controls, err = persistence.LoadControlCommands(path, limit); ignoreNotFound(err) != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if err = util.WriteFileAtomic(target, data); err != nil {
			return err
		}
		ui.Success("Exported %d samples, %d breaths and %d control commands to %s",
			len(result.Waveforms), len(result.Derived), len(result.Controls), target)
		return nil
	},
}

func ignoreNotFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	return err
}

func init() {
	Command.AddCommand(exportCmd)
}
