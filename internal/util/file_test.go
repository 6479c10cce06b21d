package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFloatFromFile(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "pressure")
	err := os.WriteFile(filePath, []byte("12.75\n"), 0644)
	assert.NoError(t, err)

	// WHEN
	value, err := ReadFloatFromFile(filePath)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 12.75, value)
}

func TestReadFloatFromFile_Empty(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "pressure")
	err := os.WriteFile(filePath, []byte("  \n"), 0644)
	assert.NoError(t, err)

	// WHEN
	_, err = ReadFloatFromFile(filePath)

	// THEN
	assert.Error(t, err)
}

func TestReadFloatFromFile_Missing(t *testing.T) {
	// WHEN
	_, err := ReadFloatFromFile(filepath.Join(t.TempDir(), "missing"))

	// THEN
	assert.Error(t, err)
}

func TestWriteFloatToFile(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "setpoint_in")

	// WHEN
	err := WriteFloatToFile(42, filePath)

	// THEN
	assert.NoError(t, err)
	data, err := os.ReadFile(filePath)
	assert.NoError(t, err)
	assert.Equal(t, "42", string(data))
}

func TestWriteFileAtomic(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "export.json")
	assert.NoError(t, os.WriteFile(filePath, []byte("old"), 0644))

	// WHEN
	err := WriteFileAtomic(filePath, []byte(`{"breaths": []}`))

	// THEN
	assert.NoError(t, err)
	data, err := os.ReadFile(filePath)
	assert.NoError(t, err)
	assert.Equal(t, `{"breaths": []}`, string(data))
}

func TestExpandPath_Home(t *testing.T) {
	// WHEN
	result, err := ExpandPath("~/vent2go.db")

	// THEN
	assert.NoError(t, err)
	assert.NotContains(t, result, "~")
}
