package alarm

import (
	"bytes"
	"strconv"

	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var Command = &cobra.Command{
	Use:              "alarm",
	Short:            "Alarm related commands",
	Long:             ``,
	TraverseChildren: true,
}

var severityColors = map[alarm.Severity]string{
	alarm.SeverityHigh:      "red+b",
	alarm.SeverityMedium:    "yellow+b",
	alarm.SeverityLow:       "yellow",
	alarm.SeverityTechnical: "cyan",
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the alarm types, their severity and limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global.LoadConfig()

		rules, err := alarm.DefaultRules.WithLimits(configuration.CurrentConfig.Alarms.Limits)
		if err != nil {
			return err
		}

		var rows [][]string
		for _, rule := range rules.Sorted() {
			severity := string(rule.Severity)
			if !global.NoColor {
				severity = ansi.Color(severity, severityColors[rule.Severity])
			}
			limit := "-"
			if rule.Limit != 0 {
				limit = strconv.FormatFloat(rule.Limit, 'f', -1, 64) + " " + rule.Unit
			}
			rows = append(rows, []string{string(rule.Type), severity, limit, rule.Description})
		}

		tab := table.Table{
			Headers: []string{"Type", "Severity", "Limit", "Description"},
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
	Command.AddCommand(rulesCmd)
}
