package hal

import (
	"bytes"
	"fmt"

	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/hal"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var Command = &cobra.Command{
	Use:              "hal",
	Short:            "Hardware related commands",
	Long:             ``,
	TraverseChildren: true,
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read all channels of the hardware once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global.LoadConfig()

		h, err := hal.New(configuration.CurrentConfig.Hal)
		if err != nil {
			return err
		}

		channels := []struct {
			name string
			unit string
			read func() (float64, error)
		}{
			{"Pressure", "cmH2O", h.Pressure},
			{"Expiratory flow", "l/min", h.FlowEx},
			{"Oxygen", "%", h.Oxygen},
			{"Inspiratory valve", "%", h.SetpointIn},
			{"Expiratory valve", "0/1", h.SetpointEx},
		}

		var rows [][]string
		for _, channel := range channels {
			valueText := "N/A"
			value, err := channel.read()
			if err != nil {
				ui.Warning("Unable to read %s: %v", channel.name, err)
			} else {
				valueText = fmt.Sprintf("%.2f", value)
			}
			rows = append(rows, []string{channel.name, valueText, channel.unit})
		}

		tab := table.Table{
			Headers: []string{"Channel", "Value", "Unit"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		if err = tab.WriteTable(&buf, global.TableConfig()); err != nil {
			return err
		}
		ui.Printfln("HAL: %s", configuration.CurrentConfig.Hal.Type)
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(readCmd)
}
