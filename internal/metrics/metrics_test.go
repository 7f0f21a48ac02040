package metrics

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/verte-zerg/typewright/internal/cadence"
	"github.com/verte-zerg/typewright/internal/engine"
	"github.com/verte-zerg/typewright/internal/platform"
	"github.com/verte-zerg/typewright/internal/sched"
)

func TestHooksUpdateCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := m.Hooks()

	h.OnStateChange(engine.Idle, engine.Typing)
	for _, r := range "abc" {
		h.OnEmit(r)
		h.OnDelay(200 * time.Millisecond)
	}
	h.OnMistake('x', 'c')
	h.OnPause(engine.PauseFocusLost)
	h.OnPause(engine.PauseFocusLost)
	h.OnPause(engine.PauseManual)
	h.OnComplete(engine.Summary{})

	if got := testutil.ToFloat64(m.chars); got != 3 {
		t.Fatalf("expected 3 chars, got %v", got)
	}
	if got := testutil.ToFloat64(m.mistakes); got != 1 {
		t.Fatalf("expected 1 mistake, got %v", got)
	}
	if got := testutil.ToFloat64(m.pauses.WithLabelValues("focus-lost")); got != 2 {
		t.Fatalf("expected 2 focus pauses, got %v", got)
	}
	if got := testutil.ToFloat64(m.pauses.WithLabelValues("manual")); got != 1 {
		t.Fatalf("expected 1 manual pause, got %v", got)
	}
	if got := testutil.ToFloat64(m.completed); got != 1 {
		t.Fatalf("expected 1 completion, got %v", got)
	}
	if got := testutil.ToFloat64(m.state); got != float64(engine.Typing) {
		t.Fatalf("unexpected state gauge %v", got)
	}
	if got := testutil.CollectAndCount(m.delay); got != 1 {
		t.Fatalf("expected one histogram, got %d", got)
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestCharactersCountTextOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	clock := sched.NewVirtual(time.Unix(0, 0))
	rec := platform.NewRecorder(io.Discard)
	eng := engine.New(engine.Deps{
		Emitter:   rec,
		Focus:     platform.Static("editor"),
		Clock:     clock,
		Scheduler: clock,
		Rand:      cadence.NewRand(7),
		Hooks:     m.Hooks(),
	})
	text := strings.Repeat("c", 80)
	eng.Start(text, engine.StartOptions{WPM: 600, Mistakes: true})
	clock.RunUntilIdle(10000)

	if got := testutil.ToFloat64(m.mistakes); got < 1 {
		t.Fatalf("expected at least one typo in %d letters, got %v", len(text), got)
	}
	if got := testutil.ToFloat64(m.chars); got != float64(len(text)) {
		t.Fatalf("expected %d text characters, got %v", len(text), got)
	}
	if rec.Transcript() != text {
		t.Fatalf("unexpected transcript %q", rec.Transcript())
	}
}
