// Package countdown implements the per-page countdown that gates the funnel.
package countdown

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State of a Timer.
type State int

const (
	Idle State = iota
	Ticking
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ticking:
		return "ticking"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Timer counts down whole seconds and runs OnComplete exactly once when it
// reaches zero. Tick drives it synchronously; Start drives it from a goroutine.
type Timer struct {
	mu        sync.Mutex
	total     int
	remaining int
	state     State
	onTick    func(remaining int)
	onDone    func()
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}

	// set while the ticking goroutine runs a callback
	inCallback atomic.Bool
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the one-second tick.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// OnTick registers a callback receiving the remaining seconds after every tick.
func OnTick(fn func(remaining int)) Option {
	return func(t *Timer) { t.onTick = fn }
}

// OnComplete registers the completion callback.
func OnComplete(fn func()) Option {
	return func(t *Timer) { t.onDone = fn }
}

// New creates an idle timer of the given length.
func New(seconds int, opts ...Option) *Timer {
	t := &Timer{total: seconds, remaining: seconds, interval: time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin moves an idle timer to Ticking. A non-positive length completes at once.
// It reports whether the timer is now ticking.
func (t *Timer) Begin() bool {
	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return t.state == Ticking
	}
	t.remaining = t.total
	if t.total <= 0 {
		t.remaining = 0
		t.state = Complete
		done := t.onDone
		t.mu.Unlock()
		if done != nil {
			done()
		}
		return false
	}
	t.state = Ticking
	t.mu.Unlock()
	return true
}

// Tick advances a ticking timer by one second.
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.state != Ticking {
		t.mu.Unlock()
		return
	}
	t.remaining--
	remaining := t.remaining
	finished := remaining <= 0
	if finished {
		t.remaining = 0
		t.state = Complete
	}
	tick, done := t.onTick, t.onDone
	t.mu.Unlock()

	if tick != nil {
		tick(remaining)
	}
	if finished && done != nil {
		done()
	}
}

// Start begins the countdown and ticks it from a goroutine until it completes,
// ctx is cancelled or Stop is called.
func (t *Timer) Start(ctx context.Context) {
	if !t.Begin() {
		return
	}

	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	interval := t.interval
	t.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.inCallback.Store(true)
				t.Tick()
				t.inCallback.Store(false)
				if t.State() == Complete {
					return
				}
			}
		}
	}()
}

// Stop halts the ticking goroutine and waits for it to exit. Called from an
// OnTick or OnComplete callback it only cancels, since the goroutine exits
// once the callback returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if !t.inCallback.Load() {
		<-done
	}
}

// Reset stops the timer and returns it to Idle with a new length.
func (t *Timer) Reset(seconds int) {
	t.Stop()
	t.mu.Lock()
	t.total = seconds
	t.remaining = seconds
	t.state = Idle
	t.mu.Unlock()
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns the elapsed share of the countdown as a percentage.
func (t *Timer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Complete || t.total <= 0 {
		return 100
	}
	return float64(t.total-t.remaining) / float64(t.total) * 100
}

// Done is closed when the ticking goroutine exits. It is nil before Start.
func (t *Timer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
