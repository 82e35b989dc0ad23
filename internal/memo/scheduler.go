package memo

import "time"

// Timer is a scheduled continuation that can still be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs continuations after a delay, each on its own goroutine.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func()) Timer
}

type clockScheduler struct{}

// NewClockScheduler - Scheduler backed by time.AfterFunc.
func NewClockScheduler() Scheduler {
	return clockScheduler{}
}

func (clockScheduler) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}
