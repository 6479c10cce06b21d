package alarm

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestEngine() *Engine {
	return NewEngine(&sync.Mutex{}, DefaultConfig, DefaultRules)
}

func healthyReading(now time.Time, pressure float64) Reading {
	return Reading{
		Now:         now,
		Pressure:    pressure,
		FlowOut:     0.2,
		Oxygen:      40,
		LastContact: now,
	}
}

func TestEngine_NoAlarms(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	now := time.Now()

	// WHEN
	verdict := engine.Evaluate(tracker, healthyReading(now, 10))

	// THEN
	assert.False(t, verdict.ForceRelease)
	assert.Empty(t, verdict.Raised)
	assert.Nil(t, engine.Active())
}

func TestEngine_HighPressure_CoughIsTolerated(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()

	// WHEN
	first := engine.Evaluate(tracker, healthyReading(start, 45))
	second := engine.Evaluate(tracker, healthyReading(start.Add(50*time.Millisecond), 46))

	// THEN
	assert.False(t, first.ForceRelease)
	assert.False(t, second.ForceRelease)
	active := engine.Active()
	assert.NotNil(t, active)
	assert.NotNil(t, active.HighPressure)
	assert.Equal(t, start, active.HighPressure.StartTime)
}

func TestEngine_HighPressure_ForcesRelease(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()
	engine.Evaluate(tracker, healthyReading(start, 45))

	// WHEN
	verdict := engine.Evaluate(tracker, healthyReading(start.Add(150*time.Millisecond), 46))

	// THEN
	assert.True(t, verdict.ForceRelease)
}

func TestEngine_HighPressure_ClearsBelowLimit(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()
	engine.Evaluate(tracker, healthyReading(start, 45))

	// WHEN
	engine.Evaluate(tracker, healthyReading(start.Add(10*time.Millisecond), 20))

	// THEN
	assert.Nil(t, engine.Active())
}

func TestEngine_HighPressure_LimitCanBeChanged(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}

	// WHEN
	engine.SetHighPressureLimit(50)
	engine.Evaluate(tracker, healthyReading(time.Now(), 45))

	// THEN
	assert.Equal(t, 50.0, engine.HighPressureLimit())
	assert.Nil(t, engine.Active())
}

func TestEngine_StuckSensors(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()

	// WHEN
	var raised []Type
	for i := 0; i < 40; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		// oxygen is read only every few seconds, pressure and flow change
		reading := Reading{
			Now:         now,
			Pressure:    10 + float64(i)*0.01,
			FlowOut:     0.1 + float64(i)*0.001,
			Oxygen:      21,
			LastContact: now,
		}
		verdict := engine.Evaluate(tracker, reading)
		raised = append(raised, verdict.Raised...)
	}

	// THEN
	assert.Equal(t, []Type{SensorsStuck}, raised)
	active := engine.Active()
	assert.Len(t, active.Technical, 1)
	assert.Equal(t, SensorsStuck, active.Technical[0].Type)
}

func TestEngine_StuckSensors_ResetsWhenAllChange(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()

	// WHEN
	for i := 0; i < 40; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		oxygen := 21.0
		if i%10 == 0 {
			oxygen += float64(i)
		}
		engine.Evaluate(tracker, Reading{
			Now:         now,
			Pressure:    10 + float64(i)*0.01,
			FlowOut:     0.1 + float64(i)*0.001,
			Oxygen:      oxygen,
			LastContact: now,
		})
	}

	// THEN
	assert.Nil(t, engine.Active())
}

func TestEngine_BadSensorReadings(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	now := time.Now()
	reading := healthyReading(now, 10)
	reading.Oxygen = math.NaN()

	// WHEN
	verdict := engine.Evaluate(tracker, reading)

	// THEN
	assert.Equal(t, []Type{BadSensorReadings}, verdict.Raised)
	active := engine.Active()
	assert.Equal(t, 0.0, active.Technical[0].Value)
}

func TestEngine_BadSensorReadings_OutOfRange(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	reading := healthyReading(time.Now(), 10)
	reading.FlowOut = 11

	// WHEN
	verdict := engine.Evaluate(tracker, reading)

	// THEN
	assert.Equal(t, []Type{BadSensorReadings}, verdict.Raised)
	assert.Equal(t, 11.0, engine.Active().Technical[0].Value)
}

func TestEngine_MissedHeartbeat(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	now := time.Now()
	reading := healthyReading(now, 10)
	reading.LastContact = now.Add(-time.Second)

	// WHEN
	verdict := engine.Evaluate(tracker, reading)

	// THEN
	assert.Equal(t, []Type{MissedHeartbeat}, verdict.Raised)
}

func TestEngine_MissedHeartbeat_WithinTimeout(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	now := time.Now()
	reading := healthyReading(now, 10)
	reading.LastContact = now.Add(-100 * time.Millisecond)

	// WHEN
	verdict := engine.Evaluate(tracker, reading)

	// THEN
	assert.Empty(t, verdict.Raised)
}

func TestEngine_TechnicalAlarmsAreDeduplicated(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()

	// WHEN
	for i := 0; i < 5; i++ {
		now := start.Add(time.Duration(i) * time.Millisecond)
		reading := healthyReading(now, 10+float64(i))
		reading.Oxygen = 150 + float64(i)
		reading.FlowOut = float64(i) * 0.01
		engine.Evaluate(tracker, reading)
	}

	// THEN
	active := engine.Active()
	assert.Len(t, active.Technical, 1)
	assert.Equal(t, start, active.Technical[0].StartTime)
}

func TestEngine_ActiveIsOrderedByStartTime(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	start := time.Now()

	first := healthyReading(start, 10)
	first.LastContact = start.Add(-time.Second)
	engine.Evaluate(tracker, first)

	second := healthyReading(start.Add(time.Millisecond), 11)
	second.LastContact = second.Now
	second.Pressure = -1
	engine.Evaluate(tracker, second)

	// WHEN
	active := engine.Active()

	// THEN
	assert.Len(t, active.Technical, 2)
	assert.Equal(t, MissedHeartbeat, active.Technical[0].Type)
	assert.Equal(t, BadSensorReadings, active.Technical[1].Type)
}

func TestEngine_Clear(t *testing.T) {
	// GIVEN
	engine := newTestEngine()
	tracker := &Tracker{}
	now := time.Now()
	reading := healthyReading(now, 10)
	reading.LastContact = now.Add(-time.Second)
	engine.Evaluate(tracker, reading)

	// WHEN
	cleared := engine.Clear(MissedHeartbeat)
	clearedAgain := engine.Clear(MissedHeartbeat)

	// THEN
	assert.True(t, cleared)
	assert.False(t, clearedAgain)
	assert.Nil(t, engine.Active())
}

func TestRules_WithLimits(t *testing.T) {
	// WHEN
	rules, err := DefaultRules.WithLimits(map[string]float64{"HIGH_PRESSURE": 35})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 35.0, rules[HighPressure].Limit)
	assert.Equal(t, 40.0, DefaultRules[HighPressure].Limit)

	_, err = DefaultRules.WithLimits(map[string]float64{"LOW_PRESSURE": 3})
	assert.Error(t, err)
}

func TestRules_Sorted(t *testing.T) {
	sorted := DefaultRules.Sorted()
	assert.Len(t, sorted, len(DefaultRules))
	for i := 1; i < len(sorted); i++ {
		assert.Less(t, string(sorted[i-1].Type), string(sorted[i].Type))
	}
}
