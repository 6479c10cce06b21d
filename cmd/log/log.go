package log

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/spf13/cobra"
)

var (
	dbPath string
	limit  int
)

var Command = &cobra.Command{
	Use:              "log",
	Short:            "Inspect the data log",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(&dbPath, "file", "f", "", "Data log to read (default is dbPath of the config)")
	Command.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "Number of most recent entries to read, 0 reads all")
}

// dataLogPath returns the path of the data log to read
func dataLogPath() string {
	if len(dbPath) > 0 {
		return dbPath
	}
	global.LoadConfig()
	path := configuration.CurrentConfig.DbPath

	if info, err := os.Stat(path); err == nil {
		ui.Info("Reading %s (%s, modified %s)", path, humanize.IBytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}
	return path
}

func formatValue(value float64) string {
	if !values.IsFinite(value) {
		return "N/A"
	}
	return humanize.FtoaWithDigits(value, 2)
}
