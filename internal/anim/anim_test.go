package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/skytour/internal/clock"
)

func TestEase(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{1, 1},
		{-1, 0},
		{2, 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Ease(tt.p), 1e-12, "p=%v", tt.p)
	}
}

func TestLerpEndpointsAreExact(t *testing.T) {
	assert.Equal(t, 0.1, Lerp(0.3, 0.1, 1))
	assert.Equal(t, 0.3, Lerp(0.3, 0.1, 0))
	assert.InDelta(t, 0.2, Lerp(0.3, 0.1, 0.5), 1e-12)
}

func TestInterpolateCamera(t *testing.T) {
	from := Camera{RA: 266.4, Dec: -29.0, FoV: 5}
	to := Camera{RA: 266.8, Dec: -28.4, FoV: 1}

	mid := InterpolateCamera(from, to, 0.5)
	assert.InDelta(t, 266.6, mid.RA, 1e-9)
	assert.InDelta(t, -28.7, mid.Dec, 1e-9)
	assert.InDelta(t, 3.0, mid.FoV, 1e-9)

	assert.Equal(t, to, InterpolateCamera(from, to, 1))
}

func TestStepperRunsAllSteps(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	var flag Flag
	var values []float64
	var interrupted *bool

	s := NewStepper(m, &flag, time.Second, FoVSteps,
		func(e float64) { values = append(values, e) },
		func(i bool) { interrupted = &i })
	s.Start()

	m.Advance(500 * time.Millisecond)
	assert.Len(t, values, 10)
	assert.Nil(t, interrupted)

	m.Advance(500 * time.Millisecond)
	assert.Len(t, values, FoVSteps)
	assert.Equal(t, 1.0, values[len(values)-1])
	if assert.NotNil(t, interrupted) {
		assert.False(t, *interrupted)
	}

	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
}

func TestStepperSnapsOnInterrupt(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	var flag Flag
	last := -1.0
	done := 0
	wasInterrupted := false

	s := NewStepper(m, &flag, 3*time.Second, OpacitySteps,
		func(e float64) { last = e },
		func(i bool) { done++; wasInterrupted = i })
	s.Start()

	m.Advance(time.Second)
	assert.Equal(t, 10, s.Step())

	flag.Set()
	m.Advance(100 * time.Millisecond)

	assert.Equal(t, 1.0, last)
	assert.Equal(t, 1, done)
	assert.True(t, wasInterrupted)
	assert.Equal(t, 0, m.Pending())
}

func TestStepperStopSkipsCallback(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	done := false
	s := NewStepper(m, nil, time.Second, 10, func(float64) {}, func(bool) { done = true })
	s.Start()
	s.Stop()

	m.Advance(2 * time.Second)
	assert.False(t, done)
	assert.Equal(t, 0, m.Pending())
}

func TestStepperSnapAppliesEndpoint(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	last := 0.0
	calls := 0
	s := NewStepper(m, nil, time.Second, 10, func(e float64) { last = e }, func(i bool) {
		calls++
		assert.True(t, i)
	})
	s.Start()
	m.Advance(300 * time.Millisecond)
	assert.Equal(t, 3, s.Step())

	s.Snap()
	s.Snap()
	assert.Equal(t, 1.0, last)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, m.Pending())
}

func TestStepperZeroDurationCompletesSynchronously(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	last := 0.0
	done := false
	NewStepper(m, nil, 0, 30, func(e float64) { last = e }, func(bool) { done = true }).Start()

	assert.True(t, done)
	assert.Equal(t, 1.0, last)
}
