package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValves_ClampAndRound(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	v := newValves(h, nil)

	// WHEN
	first := v.Set(50.4, 0)
	v.Set(150, 0)
	v.Set(-3, 0)

	// THEN
	assert.Equal(t, 50.0, first.ControlSignalIn)
	in, _ := h.writes()
	assert.Equal(t, []float64{50, 100, 0}, in)
}

func TestValves_SuppressesUnchangedWrites(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	v := newValves(h, nil)

	// WHEN
	v.Set(50, 0)
	v.Set(50.2, 0)
	v.Set(49.9, 0)

	// THEN
	in, ex := h.writes()
	assert.Equal(t, []float64{50}, in)
	assert.Equal(t, []float64{0}, ex)
}

func TestValves_NaNClosesInlet(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	h.setpointIn = 30
	v := newValves(h, nil)

	// WHEN
	result := v.Set(math.NaN(), 1)

	// THEN
	assert.Equal(t, 0.0, result.ControlSignalIn)
	in, ex := h.writes()
	assert.Equal(t, []float64{0}, in)
	assert.Empty(t, ex)
}

func TestValves_NaNOpensOutlet(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	h.setpointEx = 0
	v := newValves(h, nil)

	// WHEN
	result := v.Set(0, math.NaN())
	v.Set(0, math.NaN())

	// THEN
	assert.Equal(t, 1.0, result.ControlSignalOut)
	_, ex := h.writes()
	assert.Equal(t, []float64{1}, ex)
}

func TestValves_StandbyAlwaysWrites(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	v := newValves(h, nil)

	// WHEN
	v.Standby()
	v.Standby()

	// THEN
	in, ex := h.writes()
	assert.Equal(t, []float64{0, 0}, in)
	assert.Equal(t, []float64{1, 1}, ex)
}

func TestValves_NotAllowed(t *testing.T) {
	// GIVEN
	h := newFakeHal()
	v := newValves(h, func() bool { return false })

	// WHEN
	v.Set(70, 0)
	v.Release()

	// THEN
	in, ex := h.writes()
	assert.Empty(t, in)
	assert.Empty(t, ex)
}
