package persistence

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/vent2go/internal/values"
	"github.com/stretchr/testify/assert"
)

func createTestLogger(t *testing.T) (*DataLogger, string) {
	dbPath := filepath.Join(t.TempDir(), "data", "vent2go.db")
	l, err := Open(Config{
		DbPath:     dbPath,
		BufferSize: 1024,
	})
	assert.NoError(t, err)
	return l, dbPath
}

func createSensorValues(loopCounter uint64, pressure float64) values.SensorValues {
	result := values.NewSensorValues()
	result.LoopCounter = loopCounter
	result.Pressure = pressure
	return result
}

func TestDataLogger_StoreWaveformData(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)

	// WHEN
	for i := 1; i <= 10; i++ {
		l.StoreWaveformData(createSensorValues(uint64(i), float64(i)), values.ControlValues{ControlSignalIn: 50, ControlSignalOut: 0})
	}
	assert.NoError(t, l.Close())

	// THEN
	records, err := LoadWaveformData(dbPath, 0)
	assert.NoError(t, err)
	assert.Len(t, records, 10)
	assert.Equal(t, uint64(1), records[0].Sensors.LoopCounter)
	assert.Equal(t, 10.0, records[9].Sensors.Pressure)
	assert.Equal(t, 50.0, records[9].Controls.ControlSignalIn)
	assert.True(t, math.IsNaN(records[9].Sensors.PIP))
	assert.Equal(t, uint64(10), l.Written())
}

func TestDataLogger_LoadLimit(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)
	for i := 1; i <= 10; i++ {
		l.StoreWaveformData(createSensorValues(uint64(i), 5), values.ControlValues{})
	}
	assert.NoError(t, l.Close())

	// WHEN
	records, err := LoadWaveformData(dbPath, 3)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, uint64(8), records[0].Sensors.LoopCounter)
	assert.Equal(t, uint64(10), records[2].Sensors.LoopCounter)
}

func TestDataLogger_StoreDerivedData(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)

	// WHEN
	l.StoreDerivedData(values.DerivedValues{
		BreathCount: 3,
		Pip:         25,
		Peep:        5,
		Vte:         math.NaN(),
		Timestamp:   time.Now(),
	})
	assert.NoError(t, l.Close())

	// THEN
	derived, err := LoadDerivedData(dbPath, 0)
	assert.NoError(t, err)
	assert.Len(t, derived, 1)
	assert.Equal(t, uint64(3), derived[0].BreathCount)
	assert.Equal(t, 25.0, derived[0].Pip)
	assert.True(t, math.IsNaN(derived[0].Vte))
}

func TestDataLogger_StoreControlCommand(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)
	limit := 35.0

	// WHEN
	l.StoreControlCommand(values.ControlSetting{Name: values.PIP, Value: 25, MaxValue: &limit})
	assert.NoError(t, l.Close())

	// THEN
	commands, err := LoadControlCommands(dbPath, 0)
	assert.NoError(t, err)
	assert.Len(t, commands, 1)
	assert.Equal(t, values.PIP, commands[0].Name)
	assert.Equal(t, 35.0, *commands[0].MaxValue)
}

func TestDataLogger_LoadEmptyBucket(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)
	assert.NoError(t, l.Close())

	// WHEN
	derived, err := LoadDerivedData(dbPath, 0)

	// THEN
	assert.Nil(t, derived)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDataLogger_LoadMissingFile(t *testing.T) {
	// GIVEN
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	// WHEN
	_, err := LoadDerivedData(dbPath, 0)

	// THEN
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDataLogger_Flush(t *testing.T) {
	// GIVEN
	l, _ := createTestLogger(t)
	defer func() { _ = l.Close() }()
	l.StoreDerivedData(values.DerivedValues{BreathCount: 1})
	l.StoreDerivedData(values.DerivedValues{BreathCount: 2})

	// WHEN
	err := l.Flush()

	// THEN
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return l.Written() == 2 }, time.Second, time.Millisecond)
}

func TestDataLogger_Rotate(t *testing.T) {
	// GIVEN
	dbPath := filepath.Join(t.TempDir(), "vent2go.db")
	l, err := Open(Config{
		DbPath:      dbPath,
		MaxFileSize: 1,
		BufferSize:  16,
	})
	assert.NoError(t, err)
	l.StoreDerivedData(values.DerivedValues{BreathCount: 1})

	// WHEN
	assert.NoError(t, l.Rotate())
	assert.NoError(t, l.Close())

	// THEN
	assert.Equal(t, uint64(1), l.Rotations())
	rotated, err := filepath.Glob(dbPath + ".*")
	assert.NoError(t, err)
	assert.Len(t, rotated, 1)

	derived, err := LoadDerivedData(rotated[0], 0)
	assert.NoError(t, err)
	assert.Len(t, derived, 1)

	_, err = LoadDerivedData(dbPath, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDataLogger_StoreAfterClose(t *testing.T) {
	// GIVEN
	l, dbPath := createTestLogger(t)
	assert.NoError(t, l.Close())

	// WHEN
	l.StoreDerivedData(values.DerivedValues{BreathCount: 1})
	err := l.Flush()

	// THEN
	assert.Error(t, err)
	assert.NoError(t, l.Close())
	_, err = LoadDerivedData(dbPath, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpen_MissingPath(t *testing.T) {
	// GIVEN
	config := Config{}

	// WHEN
	l, err := Open(config)

	// THEN
	assert.Nil(t, l)
	assert.Error(t, err)
}

func TestOpen_NotEnoughDiskSpace(t *testing.T) {
	// GIVEN
	config := Config{
		DbPath:           filepath.Join(t.TempDir(), "vent2go.db"),
		MinFreeDiskSpace: math.MaxUint64,
	}

	// WHEN
	l, err := Open(config)

	// THEN
	assert.Nil(t, l)
	assert.Error(t, err)
}

func TestRotatedPath(t *testing.T) {
	// GIVEN
	now := time.Date(2024, 3, 1, 13, 4, 5, 0, time.UTC)

	// WHEN
	result := rotatedPath("/var/lib/vent2go/vent2go.db", now)

	// THEN
	assert.Equal(t, "/var/lib/vent2go/vent2go.db.20240301-130405", result)
}
