package platform

import (
	"context"
	"time"

	"github.com/verte-zerg/typewright/internal/engine"
)

// DefaultFocusPoll is the default interval between foreground queries.
const DefaultFocusPoll = 250 * time.Millisecond

// WatchFocus polls src every interval and calls fn with the new application
// whenever it changes, starting with the first successful query. Failed
// queries are skipped. It blocks until ctx is done.
func WatchFocus(ctx context.Context, src engine.FocusSource, interval time.Duration, fn func(engine.AppID)) {
	if interval <= 0 {
		interval = DefaultFocusPoll
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last engine.AppID
	seen := false
	poll := func() {
		id, err := src.Foreground()
		if err != nil {
			return
		}
		if seen && id == last {
			return
		}
		last, seen = id, true
		fn(id)
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
