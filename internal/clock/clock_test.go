package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualRunsInDueOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string

	m.AfterFunc(200*time.Millisecond, func() { got = append(got, "b") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(200*time.Millisecond, func() { got = append(got, "c") })

	m.Advance(150 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, epoch.Add(150*time.Millisecond), m.Now())

	m.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, m.Pending())
}

func TestManualChainedCallbacks(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var step func()
	step = func() {
		count++
		if count < 5 {
			m.AfterFunc(10*time.Millisecond, step)
		}
	}
	m.AfterFunc(10*time.Millisecond, step)

	m.Advance(45 * time.Millisecond)
	assert.Equal(t, 4, count)
	m.Advance(5 * time.Millisecond)
	assert.Equal(t, 5, count)
}

func TestManualStop(t *testing.T) {
	m := NewManual(epoch)
	ran := false
	timer := m.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	m.Advance(2 * time.Second)
	assert.False(t, ran)
}

func TestManualRunUntilIdle(t *testing.T) {
	m := NewManual(epoch)
	m.AfterFunc(3*time.Second, func() {})
	m.AfterFunc(time.Second, func() {})

	n := m.RunUntilIdle(10)
	assert.Equal(t, 2, n)
	assert.Equal(t, epoch.Add(3*time.Second), m.Now())

	_, ok := m.NextDue()
	assert.False(t, ok)
}

func TestLoopRunsCallbacksOnLoopGoroutine(t *testing.T) {
	l := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	fired := make(chan string, 4)
	stopped := l.AfterFunc(5*time.Millisecond, func() { fired <- "stopped" })
	l.AfterFunc(10*time.Millisecond, func() { fired <- "timer" })
	l.Post(func() {
		stopped.Stop()
		fired <- "post"
	})

	var got []string
	for len(got) < 2 {
		select {
		case s := <-fired:
			got = append(got, s)
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not run callbacks")
		}
	}
	require.Equal(t, []string{"post", "timer"}, got)

	cancel()
	<-done
}
