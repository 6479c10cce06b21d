package configuration

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	// Path of the data log database
	DbPath string `json:"dbPath"`

	Controller ControllerConfig `json:"controller"`
	Algorithm  AlgorithmConfig  `json:"algorithm"`
	Alarms     AlarmsConfig     `json:"alarms"`
	Hal        HalConfig        `json:"hal"`
	Sampling   SamplingConfig   `json:"sampling"`
	Logging    LoggingConfig    `json:"logging"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
	Mqtt       MqttConfig       `json:"mqtt"`
	Watchdog   WatchdogConfig   `json:"watchdog"`
	Profiling  ProfilingConfig  `json:"profiling"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("vent2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/vent2go/")
	}

	loadDotEnv()

	viper.SetEnvPrefix("VENT2GO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

// loadDotEnv loads a .env file from the working directory into the environment, if present
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		ui.Warning("Unable to load .env file: %v", err)
	}
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/var/lib/vent2go/vent2go.db")

	viper.SetDefault("controller.loopupdatetime", 10*time.Millisecond)
	viper.SetDefault("controller.loopsuntilupdate", 10)
	viper.SetDefault("controller.ringbuffersize", 100)
	viper.SetDefault("controller.interruptjointimeout", 1*time.Second)

	viper.SetDefault("algorithm.type", "pid")
	viper.SetDefault("algorithm.pid.p", 4.0)
	viper.SetDefault("algorithm.pid.i", 10.0)
	viper.SetDefault("algorithm.pid.d", 0.0)

	viper.SetDefault("alarms.coughduration", 100*time.Millisecond)
	viper.SetDefault("alarms.heartbeattimeout", 500*time.Millisecond)
	viper.SetDefault("alarms.stucksensorduration", 200*time.Millisecond)
	viper.SetDefault("alarms.maxflow", 10.0)
	viper.SetDefault("alarms.maxpressure", 100.0)
	viper.SetDefault("alarms.forcedreleasecycles", 5)
	viper.SetDefault("alarms.forcedreleasepause", 20*time.Millisecond)

	viper.SetDefault("hal.type", HalTypeFile)
	viper.SetDefault("hal.simulated.compliance", 0.05)
	viper.SetDefault("hal.simulated.resistance", 5.0)
	viper.SetDefault("hal.simulated.maxinflow", 1.5)
	viper.SetDefault("hal.simulated.oxygen", 40.0)
	viper.SetDefault("hal.simulated.noise", 0.05)
	viper.SetDefault("hal.simulated.step", 1*time.Millisecond)

	viper.SetDefault("sampling.oxygeninterval", 5*time.Second)
	viper.SetDefault("sampling.pressurewindowsize", 5)
	viper.SetDefault("sampling.flowbaselinewindowsize", 500)
	viper.SetDefault("sampling.flowbaselinepercentile", 5.0)

	viper.SetDefault("logging.flushevery", 10)
	viper.SetDefault("logging.maxfilesize", 512*1024*1024)
	viper.SetDefault("logging.minfreediskspace", 256*1024*1024)
	viper.SetDefault("logging.buffersize", 4096)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 8080)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.clientid", "vent2go")
	viper.SetDefault("mqtt.topicprefix", "vent2go")
	viper.SetDefault("mqtt.publishinterval", 1*time.Second)
	viper.SetDefault("mqtt.qos", 1)

	viper.SetDefault("watchdog.enabled", true)
	viper.SetDefault("watchdog.pollinterval", 100*time.Millisecond)
	viper.SetDefault("watchdog.stalltimeout", 2*time.Second)

	viper.SetDefault("profiling.enabled", false)
	viper.SetDefault("profiling.host", "localhost")
	viper.SetDefault("profiling.port", 6060)
}

// ReadConfigFile reads the configuration file found by InitConfig.
// A missing file is only an error if the path was given explicitly.
func ReadConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			ui.Fatal("Error reading config file, %s", err)
		}
		ui.Warning("No configuration file found, using defaults")
	} else {
		// this is only populated _after_ ReadInConfig()
		ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	LoadConfig()
}

func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(DecodeHook()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

// DecodeHook returns the decode hooks for all custom configuration types
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		MillisecondsDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		DefaultTrueBoolHookFunc(),
	)
}
