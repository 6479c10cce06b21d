package log

import (
	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/vent2go/internal/persistence"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/spf13/cobra"
)

var waveformCmd = &cobra.Command{
	Use:   "waveform",
	Short: "Plot the most recent pressure samples of the control loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := persistence.LoadWaveformData(dataLogPath(), limit)
		if err != nil {
			return err
		}

		var pressures []float64
		var inlet []float64
		for _, record := range records {
			if !values.IsFinite(record.Sensors.Pressure) {
				continue
			}
			pressures = append(pressures, record.Sensors.Pressure)
			inlet = append(inlet, record.Controls.ControlSignalIn)
		}
		if len(pressures) <= 0 {
			ui.Printfln("No pressure samples yet...")
			return nil
		}

		first, last := records[0].Sensors.LoopCounter, records[len(records)-1].Sensors.LoopCounter
		ui.Printfln("Loop iterations %d - %d", first, last)

		graph := asciigraph.Plot(pressures, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption("Pressure [cmH2O]"))
		ui.Printfln(graph)
		ui.Printfln("")
		graph = asciigraph.Plot(inlet, asciigraph.Height(8), asciigraph.Width(100), asciigraph.Caption("Inspiratory valve [%]"))
		ui.Printfln(graph)
		return nil
	},
}

func init() {
	Command.AddCommand(waveformCmd)
}
