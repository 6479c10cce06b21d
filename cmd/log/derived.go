package log

import (
	"bytes"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/internal/persistence"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var derivedCmd = &cobra.Command{
	Use:   "derived",
	Short: "Print the summaries of the most recent breaths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		derived, err := persistence.LoadDerivedData(dataLogPath(), limit)
		if err != nil {
			return err
		}

		var rows [][]string
		for _, breath := range derived {
			rows = append(rows, []string{
				strconv.FormatUint(breath.BreathCount, 10),
				humanize.Time(breath.Timestamp),
				formatValue(breath.Pip),
				formatValue(breath.PipPlateau),
				formatValue(breath.Peep),
				formatValue(breath.IPhaseDuration),
				formatValue(breath.Vte),
			})
		}

		tab := table.Table{
			Headers: []string{"Breath", "Time", "PIP", "Plateau", "PEEP", "I-Phase [s]", "VTE [l]"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		if err = tab.WriteTable(&buf, global.TableConfig()); err != nil {
			return err
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(derivedCmd)
}
