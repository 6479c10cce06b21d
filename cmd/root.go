package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/vent2go/cmd/alarm"
	"github.com/markusressel/vent2go/cmd/config"
	"github.com/markusressel/vent2go/cmd/global"
	"github.com/markusressel/vent2go/cmd/hal"
	"github.com/markusressel/vent2go/cmd/log"
	"github.com/markusressel/vent2go/internal"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vent2go",
	Short: "A daemon to control a pressure controlled ventilator.",
	Long: `vent2go runs the control loop of a pressure controlled ventilator,
monitors the breathing of the patient and raises alarms.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupUi()
	},
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		printHeader()
		global.LoadConfig()
		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/vent2go.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")
	rootCmd.PersistentFlags().BoolVarP(&global.Simulate, "simulate", "", false, "Use a simulated lung instead of the hardware")

	rootCmd.AddCommand(config.Command)
	rootCmd.AddCommand(hal.Command)
	rootCmd.AddCommand(alarm.Command)
	rootCmd.AddCommand(log.Command)
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("vent", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("2", pterm.NewStyle(pterm.FgWhite)),
		pterm.NewLettersFromStringWithStyle("go", pterm.NewStyle(pterm.FgLightBlue)),
	).Render()
	if err != nil {
		fmt.Println("vent2go")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
