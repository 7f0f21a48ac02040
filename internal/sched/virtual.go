package sched

import (
	"sort"
	"time"
)

// Virtual is a manually advanced Clock and Scheduler. Callbacks run
// synchronously inside Step and Advance, so a test drives the engine
// deterministically from a single goroutine.
type Virtual struct {
	now    time.Time
	seq    uint64
	timers []*virtualTimer
}

type virtualTimer struct {
	v    *Virtual
	at   time.Time
	seq  uint64
	f    func()
	done bool
}

// NewVirtual returns a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now implements Clock.
func (v *Virtual) Now() time.Time {
	return v.now
}

// AfterFunc implements Scheduler.
func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &virtualTimer{v: v, at: v.now.Add(d), seq: v.seq, f: f}
	v.timers = append(v.timers, t)
	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].at.Equal(v.timers[j].at) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].at.Before(v.timers[j].at)
	})
	return t
}

func (t *virtualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.v.remove(t)
	return true
}

func (v *Virtual) remove(t *virtualTimer) {
	for i, other := range v.timers {
		if other == t {
			v.timers = append(v.timers[:i], v.timers[i+1:]...)
			return
		}
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (v *Virtual) Pending() int {
	return len(v.timers)
}

// Next returns the delay until the earliest pending timer.
func (v *Virtual) Next() (time.Duration, bool) {
	if len(v.timers) == 0 {
		return 0, false
	}
	return v.timers[0].at.Sub(v.now), true
}

// Step moves the clock to the earliest pending timer and fires it.
func (v *Virtual) Step() bool {
	if len(v.timers) == 0 {
		return false
	}
	t := v.timers[0]
	v.timers = v.timers[1:]
	t.done = true
	if t.at.After(v.now) {
		v.now = t.at
	}
	t.f()
	return true
}

// Advance fires every timer due within d, in order, and leaves the clock at now+d.
func (v *Virtual) Advance(d time.Duration) {
	until := v.now.Add(d)
	for len(v.timers) > 0 && !v.timers[0].at.After(until) {
		v.Step()
	}
	v.now = until
}

// RunUntilIdle steps until no timers remain or limit steps have run. It
// returns the number of steps taken.
func (v *Virtual) RunUntilIdle(limit int) int {
	steps := 0
	for steps < limit && v.Step() {
		steps++
	}
	return steps
}
