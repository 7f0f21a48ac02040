// Package sched provides the single execution context the typing engine runs on,
// together with cancellable deferred callbacks and a virtual clock for tests.
package sched

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from being delivered if it has not been already.
	// It reports whether the call stopped the timer.
	Stop() bool
}

// Scheduler runs f on the execution context after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Seconds converts fractional seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
