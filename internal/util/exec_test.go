package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeCmdExecution(t *testing.T) {
	// GIVEN
	executable := "echo"

	// WHEN
	result, err := SafeCmdExecution(executable, []string{" vent2go "}, time.Second)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "vent2go", result)
}

func TestSafeCmdExecution_Missing(t *testing.T) {
	// GIVEN
	executable := "vent2go-does-not-exist"

	// WHEN
	_, err := SafeCmdExecution(executable, nil, time.Second)

	// THEN
	assert.Error(t, err)
}

func TestSafeCmdExecution_Timeout(t *testing.T) {
	// GIVEN
	executable := "sleep"

	// WHEN
	_, err := SafeCmdExecution(executable, []string{"5"}, 10*time.Millisecond)

	// THEN
	assert.Error(t, err)
}
