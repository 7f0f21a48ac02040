package sched

import (
	"context"
	"errors"
	"time"
)

// ErrStopped is returned when work is posted to a loop that is no longer running.
var ErrStopped = errors.New("loop stopped")

const queueSize = 64

// Loop serializes every callback onto one goroutine. Timer firings, focus
// notifications and user commands are all posted here so that the engine has
// exactly one mutator.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

// NewLoop returns a loop that does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-l.queue:
			f()
		}
	}
}

// Post queues f for execution. It returns false once the loop has stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- f:
		return true
	case <-l.done:
		return false
	}
}

// Call runs f on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Now implements Clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc implements Scheduler. The callback is posted onto the loop rather
// than run on the timer goroutine. A timer that already fired may still have
// its callback queued after Stop returns false, so callers must tolerate stale
// deliveries.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		l.Post(f)
	})
}
