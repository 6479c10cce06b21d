package global

import (
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/viper"
	"github.com/tomlazar/table"
)

var (
	CfgFile  string
	NoColor  bool
	NoStyle  bool
	Verbose  bool
	Simulate bool
)

// LoadConfig reads and validates the configuration, exits on error
func LoadConfig() {
	if Simulate {
		viper.Set("hal.type", configuration.HalTypeSimulated)
	}
	configuration.ReadConfigFile()
	if err := configuration.Validate(); err != nil {
		ui.ErrorAndNotify("Config Validation Error", "%v", err)
		ui.Fatal("Invalid configuration")
	}
}

// TableConfig is the style of all tables printed by the cli
func TableConfig() *table.Config {
	return &table.Config{
		ShowIndex:       false,
		Color:           !NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	}
}
