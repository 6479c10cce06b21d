package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPidLoop(t *testing.T) {
	// GIVEN
	p, i, d := 1.0, 2.0, 3.0

	// WHEN
	pidLoop := NewPidLoop(p, i, d, 0, 100)

	// THEN
	assert.Equal(t, p, pidLoop.p)
	assert.Equal(t, i, pidLoop.i)
	assert.Equal(t, d, pidLoop.d)
	assert.Equal(t, 100.0, pidLoop.outMax)
}

func TestPidLoop_P(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(2.0, 0, 0, 0, 100)
	start := time.Unix(0, 0)

	// WHEN
	output := pidLoop.Loop(10.0, 5.0, start)
	// THEN
	assert.Equal(t, 10.0, output)

	// WHEN
	output = pidLoop.Loop(10.0, 8.0, start.Add(time.Second))
	// THEN
	assert.Equal(t, 4.0, output)
}

func TestPidLoop_I(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(0, 0.5, 0, 0, 100)
	start := time.Unix(0, 0)

	// WHEN
	output := pidLoop.Loop(10.0, 5.0, start)
	// THEN
	assert.Equal(t, 0.0, output)

	// WHEN
	output = pidLoop.Loop(10.0, 5.0, start.Add(2*time.Second))
	// THEN
	assert.InDelta(t, 5.0, output, 1e-9)
}

func TestPidLoop_D(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(0, 0, 1.0, -100, 100)
	start := time.Unix(0, 0)

	// WHEN
	output := pidLoop.Loop(10.0, 5.0, start)
	// THEN
	assert.Equal(t, 0.0, output)

	// WHEN
	output = pidLoop.Loop(10.0, 8.0, start.Add(time.Second))
	// THEN
	assert.InDelta(t, -3.0, output, 1e-9)
}

func TestPidLoop_Clamped(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(100, 0, 0, 0, 100)

	// WHEN
	output := pidLoop.Loop(30, 0, time.Unix(0, 0))

	// THEN
	assert.Equal(t, 100.0, output)
}

func TestPidLoop_NoTimePassed(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(1, 1, 1, 0, 100)
	now := time.Unix(0, 0)
	first := pidLoop.Loop(20, 10, now)

	// WHEN
	second := pidLoop.Loop(50, 0, now)

	// THEN
	assert.Equal(t, first, second)
}

func TestPidLoop_Reset(t *testing.T) {
	// GIVEN
	pidLoop := NewPidLoop(0, 1, 0, 0, 100)
	start := time.Unix(0, 0)
	pidLoop.Loop(10, 0, start)
	pidLoop.Loop(10, 0, start.Add(time.Second))

	// WHEN
	pidLoop.Reset()
	output := pidLoop.Loop(10, 0, start.Add(2*time.Second))

	// THEN
	assert.Equal(t, 0.0, output)
}
