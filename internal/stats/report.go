package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/typewright/internal/model"
	"github.com/verte-zerg/typewright/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs   []model.RunRecord
	Totals store.Totals
	Window int
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg.Last)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list runs: %w", err)
	}
	totals, err := st.Totals(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load totals: %w", err)
	}
	return Report{Runs: runs, Totals: totals, Window: cfg.Window}, nil
}

// RenderHistory prints one row per run, an all-time summary and a WPM trend.
func RenderHistory(w io.Writer, report Report) error {
	if len(report.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}

	headers := []string{"Ended", "Chars", "Target", "WPM", "Duration", "Requested", "Typos", "Pauses"}
	rows := make([][]string, 0, len(report.Runs))
	wpms := make([]float64, 0, len(report.Runs))
	for _, run := range report.Runs {
		wpm, _ := RunMetrics(run.Chars, run.DurationMs)
		wpms = append(wpms, wpm)
		requested := "-"
		if run.RequestedMs > 0 {
			requested = formatMs(run.RequestedMs)
		}
		rows = append(rows, []string{
			run.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Chars),
			fmt.Sprintf("%.0f", run.WPM),
			fmt.Sprintf("%.1f", wpm),
			formatMs(run.DurationMs),
			requested,
			fmt.Sprintf("%d", run.Mistakes),
			fmt.Sprintf("%d", run.Pauses),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	allWPM, _ := RunMetrics(int(report.Totals.Chars), report.Totals.DurationMs)
	if _, err := fmt.Fprintf(w, "\nRuns: %d  Chars: %d  Effective WPM: %.1f\n",
		report.Totals.Runs, report.Totals.Chars, allWPM); err != nil {
		return err
	}
	if len(wpms) > 1 {
		trend := Sparkline(MovingAverage(wpms, report.Window))
		if _, err := fmt.Fprintf(w, "Trend: [%s]\n", trend); err != nil {
			return err
		}
	}
	return nil
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
