package sched

import "time"

// Scheduler is the only source of deferred execution in the engine.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	Stop() bool
}

// CancelFunc cancels a callback scheduled through a Group. Calling it after
// the callback ran is a no-op.
type CancelFunc func()
