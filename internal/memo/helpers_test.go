package memo

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/memoicons-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
	owner   *fakeScheduler
}

func (that *fakeTimer) Stop() bool {
	that.owner.mu.Lock()
	defer that.owner.mu.Unlock()

	if that.stopped || that.fired {
		return false
	}
	that.stopped = true

	return true
}

// fakeScheduler queues continuations until the test fires them.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (that *fakeScheduler) AfterFunc(delay time.Duration, fn func()) Timer {
	that.mu.Lock()
	defer that.mu.Unlock()

	timer := &fakeTimer{delay: delay, fn: fn, owner: that}
	that.timers = append(that.timers, timer)

	return timer
}

func (that *fakeScheduler) next(includeStopped bool) *fakeTimer {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, timer := range that.timers {
		if timer.fired || (timer.stopped && !includeStopped) {
			continue
		}
		timer.fired = true

		return timer
	}

	return nil
}

// Flush fires every live continuation, including ones scheduled while flushing.
func (that *fakeScheduler) Flush() {
	for timer := that.next(false); timer != nil; timer = that.next(false) {
		timer.fn()
	}
}

// Step fires the oldest live continuation.
func (that *fakeScheduler) Step() bool {
	timer := that.next(false)
	if timer == nil {
		return false
	}
	timer.fn()

	return true
}

// FlushIgnoringStop also fires cancelled continuations, as a late timer would.
func (that *fakeScheduler) FlushIgnoringStop() {
	for timer := that.next(true); timer != nil; timer = that.next(true) {
		timer.fn()
	}
}

// Live returns the delays of continuations that are neither fired nor stopped.
func (that *fakeScheduler) Live() []time.Duration {
	that.mu.Lock()
	defer that.mu.Unlock()

	var delays []time.Duration
	for _, timer := range that.timers {
		if !timer.fired && !timer.stopped {
			delays = append(delays, timer.delay)
		}
	}

	return delays
}

type recorder struct {
	mu     sync.Mutex
	events []entity.Event
}

func (that *recorder) OnEvent(event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

// Take returns the recorded events and forgets them.
func (that *recorder) Take() []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	events := that.events
	that.events = nil

	return events
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedLayout deals the given icons in order instead of shuffling.
func fixedLayout(layout ...entity.Icon) func([]entity.Icon) {
	return func(deck []entity.Icon) {
		copy(deck, layout)
	}
}

func newTestEngine(t *testing.T, icons []string, layout ...entity.Icon) (*Engine, *fakeScheduler, *recorder) {
	t.Helper()

	scheduler := &fakeScheduler{}
	opts := []Option{WithScheduler(scheduler)}
	if layout != nil {
		opts = append(opts, WithShuffle(fixedLayout(layout...)))
	}

	engine, err := NewEngine(discardLogger(), icons, opts...)
	require.NoError(t, err)

	events := &recorder{}
	engine.Subscribe(events)

	return engine, scheduler, events
}
