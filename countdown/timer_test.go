package countdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCompletesOnceAfterFiveTicks(t *testing.T) {
	var fired int32
	var ticks []int
	timer := New(5,
		OnTick(func(remaining int) { ticks = append(ticks, remaining) }),
		OnComplete(func() { atomic.AddInt32(&fired, 1) }),
	)

	require.True(t, timer.Begin())
	assert.Equal(t, Ticking, timer.State())

	for i := 0; i < 4; i++ {
		timer.Tick()
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 1, timer.Remaining())

	timer.Tick()
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, Complete, timer.State())

	timer.Tick()
	timer.Tick()
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, []int{4, 3, 2, 1, 0}, ticks)
}

func TestNonPositiveCompletesImmediately(t *testing.T) {
	for _, seconds := range []int{0, -3} {
		var fired int32
		timer := New(seconds, OnComplete(func() { atomic.AddInt32(&fired, 1) }))

		assert.False(t, timer.Begin())
		assert.Equal(t, Complete, timer.State())
		assert.Equal(t, int32(1), fired)
		assert.Equal(t, 100.0, timer.Progress())
	}
}

func TestProgress(t *testing.T) {
	timer := New(4)
	assert.Equal(t, 0.0, timer.Progress())
	timer.Begin()
	timer.Tick()
	assert.Equal(t, 25.0, timer.Progress())
}

func TestResetReturnsToIdle(t *testing.T) {
	var fired int32
	timer := New(2, OnComplete(func() { atomic.AddInt32(&fired, 1) }))
	timer.Begin()
	timer.Tick()
	timer.Tick()
	require.Equal(t, Complete, timer.State())

	timer.Reset(3)
	assert.Equal(t, Idle, timer.State())
	assert.Equal(t, 3, timer.Remaining())

	timer.Begin()
	timer.Tick()
	timer.Tick()
	timer.Tick()
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestStartRunsToCompletion(t *testing.T) {
	completed := make(chan struct{})
	timer := New(3, WithInterval(time.Millisecond), OnComplete(func() { close(completed) }))

	timer.Start(context.Background())

	select {
	case <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not complete")
	}
	<-timer.Done()
	assert.Equal(t, 0, timer.Remaining())
	timer.Stop()
}

func TestCancelStopsGoroutine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fired int32
	timer := New(1000, WithInterval(time.Millisecond), OnComplete(func() { atomic.AddInt32(&fired, 1) }))

	timer.Start(ctx)
	done := timer.Done()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not exit on cancel")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, Ticking, timer.State())
}

func TestStopWaitsForGoroutine(t *testing.T) {
	timer := New(1000, WithInterval(time.Millisecond))
	timer.Start(context.Background())
	timer.Stop()
	timer.Stop()

	remaining := timer.Remaining()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, remaining, timer.Remaining())
}

func TestResetFromCallback(t *testing.T) {
	var timer *Timer
	reset := make(chan struct{})
	timer = New(2,
		WithInterval(20*time.Millisecond),
		OnComplete(func() {
			timer.Reset(7)
			close(reset)
		}),
	)
	timer.Start(context.Background())
	done := timer.Done()

	select {
	case <-reset:
	case <-time.After(2 * time.Second):
		t.Fatal("Reset from OnComplete did not return")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticking goroutine did not exit after Reset")
	}
	assert.Equal(t, Idle, timer.State())
	assert.Equal(t, 7, timer.Remaining())
}

func TestStopFromTick(t *testing.T) {
	var timer *Timer
	timer = New(100,
		WithInterval(20*time.Millisecond),
		OnTick(func(remaining int) {
			if remaining == 98 {
				timer.Stop()
			}
		}),
	)
	timer.Start(context.Background())
	done := timer.Done()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop from OnTick did not end the goroutine")
	}
	assert.Equal(t, 98, timer.Remaining())
}
