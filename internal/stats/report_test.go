package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typewright/internal/model"
	"github.com/verte-zerg/typewright/internal/store"
)

func TestRunMetrics(t *testing.T) {
	wpm, cpm := RunMetrics(300, 60000)
	if wpm != 60 || cpm != 300 {
		t.Fatalf("expected 60 wpm / 300 cpm, got %.2f / %.2f", wpm, cpm)
	}
	if wpm, cpm := RunMetrics(10, 0); wpm != 0 || cpm != 0 {
		t.Fatalf("zero duration should yield zero metrics")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("flat series should use the middle glyph, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("empty series should render nothing")
	}
}

func TestBuildAndRenderHistory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		_, err := st.InsertRun(ctx, model.RunRecord{
			StartedAt:   start,
			EndedAt:     start.Add(time.Minute),
			Chars:       150 * (i + 1),
			WPM:         60,
			RequestedMs: 60000,
			Mistakes:    i,
			DurationMs:  60000,
		})
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Last: 2, Window: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 || report.Totals.Runs != 3 {
		t.Fatalf("unexpected report %+v", report)
	}

	var buf bytes.Buffer
	if err := RenderHistory(&buf, report); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Ended", "60.0", "90.0", "Effective WPM: 60.0", "Trend: [ @]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, Report{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No runs found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
