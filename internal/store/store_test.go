package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typewright/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func run(start time.Time, chars int, durationMs int64) model.RunRecord {
	return model.RunRecord{
		StartedAt:  start,
		EndedAt:    start.Add(time.Duration(durationMs) * time.Millisecond),
		Chars:      chars,
		WPM:        60,
		Mistakes:   1,
		Pauses:     2,
		DurationMs: durationMs,
	}
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		id, err := st.InsertRun(ctx, run(base.Add(time.Duration(i)*time.Hour), 100*(i+1), 60000))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if id != int64(i+1) {
			t.Fatalf("unexpected id %d", id)
		}
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
	if !all[0].StartedAt.Equal(base) || all[0].Pauses != 2 || all[0].Mistakes != 1 {
		t.Fatalf("unexpected first run %+v", all[0])
	}

	last, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].Chars != 300 || last[1].Chars != 400 {
		t.Fatalf("expected the two latest runs oldest first, got %+v", last)
	}
}

func TestTotals(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	empty, err := st.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if empty.Runs != 0 || empty.Chars != 0 {
		t.Fatalf("expected empty totals, got %+v", empty)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := st.InsertRun(ctx, run(base, 300, 60000)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertRun(ctx, run(base.Add(time.Hour), 600, 120000)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	totals, err := st.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Runs != 2 || totals.Chars != 900 || totals.DurationMs != 180000 || totals.Mistakes != 2 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}
