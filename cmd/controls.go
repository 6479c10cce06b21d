package cmd

import (
	"bytes"
	"strconv"

	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Print the settings a coordinator can change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][]string
		for _, name := range values.ControlNames {
			control := values.Controls[name]
			rows = append(rows, []string{
				string(name),
				control.Unit,
				strconv.FormatFloat(control.Default, 'f', -1, 64),
				strconv.FormatFloat(control.Min, 'f', -1, 64),
				strconv.FormatFloat(control.Max, 'f', -1, 64),
			})
		}

		tab := table.Table{
			Headers: []string{"Name", "Unit", "Default", "Min", "Max"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		if err := tab.WriteTable(&buf, global.TableConfig()); err != nil {
			return err
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(controlsCmd)
}
