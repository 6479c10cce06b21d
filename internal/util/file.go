package util

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
)

// ExpandPath resolves a leading "~" and symlinks of the given path, if possible
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path, err
	}
	evaluated, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		// the file may not exist yet
		return expanded, nil
	}
	return evaluated, nil
}

// ReadFloatFromFile reads a single float value from a (sysfs like) file
func ReadFloatFromFile(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(data))
	if len(text) <= 0 {
		return 0, fmt.Errorf("file is empty: %s", path)
	}
	return strconv.ParseFloat(text, 64)
}

// WriteFloatToFile writes a single float value to the given path.
// Device files cannot be replaced atomically, so this writes in place.
func WriteFloatToFile(value float64, path string) error {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	return os.WriteFile(path, []byte(text), 0644)
}

// WriteFileAtomic replaces the content of the file at the given path in a single step,
// so readers never see a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	return atomic.WriteFile(expanded, bytes.NewReader(data))
}
