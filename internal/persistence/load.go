package persistence

import (
	"github.com/markusressel/vent2go/internal/values"
)

// LoadWaveformData returns the most recent loop iterations of the data log at dbPath
func LoadWaveformData(dbPath string, limit int) ([]WaveformRecord, error) {
	return load[WaveformRecord](dbPath, BucketWaveforms, limit)
}

// LoadDerivedData returns the most recent breath summaries of the data log at dbPath
func LoadDerivedData(dbPath string, limit int) ([]values.DerivedValues, error) {
	return load[values.DerivedValues](dbPath, BucketDerived, limit)
}

// LoadControlCommands returns the most recent control settings of the data log at dbPath
func LoadControlCommands(dbPath string, limit int) ([]values.ControlSetting, error) {
	return load[values.ControlSetting](dbPath, BucketControls, limit)
}
