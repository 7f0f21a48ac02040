package platform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/verte-zerg/typewright/internal/engine"
)

type scriptedSource struct {
	mu    sync.Mutex
	steps []string
}

func (s *scriptedSource) Foreground() (engine.AppID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return "done", nil
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	if next == "" {
		return "", errors.New("query failed")
	}
	return engine.AppID(next), nil
}

func TestWatchFocusReportsChangesOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &scriptedSource{steps: []string{"editor", "editor", "", "browser", "browser", "editor"}}
	got := make(chan engine.AppID, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		WatchFocus(ctx, src, time.Millisecond, func(id engine.AppID) { got <- id })
	}()

	want := []engine.AppID{"editor", "browser", "editor", "done"}
	for _, w := range want {
		select {
		case id := <-got:
			if id != w {
				t.Fatalf("expected %q, got %q", w, id)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}

	cancel()
	<-done
	select {
	case id := <-got:
		t.Fatalf("unexpected extra notification %q", id)
	default:
	}
}
