package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typewright/internal/cadence"
	"github.com/verte-zerg/typewright/internal/config"
	"github.com/verte-zerg/typewright/internal/control"
	"github.com/verte-zerg/typewright/internal/engine"
	"github.com/verte-zerg/typewright/internal/logging"
	"github.com/verte-zerg/typewright/internal/metrics"
	"github.com/verte-zerg/typewright/internal/model"
	"github.com/verte-zerg/typewright/internal/platform"
	"github.com/verte-zerg/typewright/internal/sched"
	"github.com/verte-zerg/typewright/internal/store"
	"github.com/verte-zerg/typewright/internal/tui"
)

const shutdownTimeout = 2 * time.Second

// readInput returns the text to type from --file, --text or a piped stdin,
// with line endings normalized to "\n".
func readInput(cmd *cobra.Command) (text string, fromStdin bool, err error) {
	switch {
	case inputFile != "" && inputText != "":
		return "", false, fmt.Errorf("--file and --text are mutually exclusive")
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	case inputText != "":
		text = inputText
	default:
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", false, fmt.Errorf("no input: use --file, --text or pipe text on stdin")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
		fromStdin = true
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, fromStdin, nil
}

// latest forwards snapshots from the engine loop to a slower consumer,
// dropping intermediate ones so the loop never blocks.
type latest struct {
	ch chan engine.Snapshot
}

func newLatest() *latest {
	return &latest{ch: make(chan engine.Snapshot, 1)}
}

func (l *latest) put(s engine.Snapshot) {
	for {
		select {
		case l.ch <- s:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// loopControls posts TUI commands onto the engine loop without waiting.
type loopControls struct {
	loop *sched.Loop
	eng  *engine.Engine
}

func (c loopControls) Pause() {
	c.loop.Post(func() { c.eng.RequestPause() })
}

func (c loopControls) Resume(countdown int) {
	c.loop.Post(func() { c.eng.ResumeWithCountdown(countdown) })
}

func (c loopControls) Stop() {
	c.loop.Post(c.eng.Stop)
}

func runRecord(s engine.Summary) model.RunRecord {
	return model.RunRecord{
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		Chars:       s.Chars,
		WPM:         s.WPM,
		RequestedMs: s.Requested.Milliseconds(),
		Mistakes:    s.Mistakes,
		Pauses:      s.Pauses,
		DurationMs:  s.Duration().Milliseconds(),
	}
}

func openOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	if dryRunOut == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(dryRunOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create dry-run output: %w", err)
	}
	return f, func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close dry-run output: %v\n", cerr)
		}
	}, nil
}

func runSession(cmd *cobra.Command, cfg model.Config, text string, fromStdin bool) error {
	var console io.Writer
	if noTUI {
		console = cmd.ErrOrStderr()
	}
	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath, Console: console})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		_ = logCloser.Close()
	}()

	var (
		emitter engine.Emitter
		focus   engine.FocusSource
	)
	if dryRun {
		out, closeOut, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer closeOut()
		emitter = platform.NewRecorder(out)
		focus = platform.Static("dry-run")
	} else {
		p, err := platform.New()
		if err != nil {
			if errors.Is(err, platform.ErrUnsupported) {
				return fmt.Errorf("%w (try --dry-run)", err)
			}
			return fmt.Errorf("failed to initialize platform: %w", err)
		}
		emitter, focus = p, p
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", "err", cerr)
		}
	}()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loop := sched.NewLoop()
	updates := newLatest()
	saved := make(chan model.RunRecord, 1)
	finished := make(chan struct{})
	var finishOnce sync.Once
	var saves sync.WaitGroup

	hooks := engine.Hooks{
		OnChange: func(snap engine.Snapshot) {
			updates.put(snap)
			if snap.State == engine.Idle {
				finishOnce.Do(func() { close(finished) })
			}
		},
		OnComplete: func(s engine.Summary) {
			rec := runRecord(s)
			saves.Add(1)
			go func() {
				defer saves.Done()
				if _, err := st.InsertRun(context.Background(), rec); err != nil {
					logger.Error("failed to save run", "err", err)
					return
				}
				select {
				case saved <- rec:
				default:
				}
			}()
		},
	}
	eng := engine.New(engine.Deps{
		Emitter:   emitter,
		Focus:     focus,
		Clock:     loop,
		Scheduler: loop,
		Rand:      cadence.NewRand(cfg.Seed),
		Logger:    logger,
		Hooks:     m.Hooks().Merge(hooks),
	})

	go loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-loop.Done()
		saves.Wait()
	}()

	var watchers sync.WaitGroup
	defer watchers.Wait()
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	watchers.Add(1)
	go func() {
		defer watchers.Done()
		platform.WatchFocus(watchCtx, focus, cfg.FocusPoll, func(id engine.AppID) {
			loop.Post(func() { eng.FocusChanged(id) })
		})
	}()

	if cfg.ControlAddr != "" {
		srv := &http.Server{
			Addr:              cfg.ControlAddr,
			Handler:           control.NewHandler(control.NewLoopController(loop, eng), cfg.ResumeCountdown, reg, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		watchers.Add(1)
		go func() {
			defer watchers.Done()
			logger.Info("control API listening", "addr", cfg.ControlAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("control API failed", "err", err)
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn("failed to shut down control API", "err", err)
			}
		}()
	}

	opts := engine.StartOptions{
		WPM:       cfg.WPM,
		Countdown: cfg.Countdown,
		Duration:  cfg.Duration,
		Mistakes:  cfg.Mistakes,
	}
	var started bool
	if err := loop.Call(ctx, func() { started = eng.Start(text, opts) }); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if !started {
		return fmt.Errorf("nothing to type")
	}

	if noTUI {
		return runHeadless(ctx, cmd.ErrOrStderr(), loop, eng, updates, finished, logger)
	}
	return runTUI(ctx, text, fromStdin, cfg, st, loop, eng, updates, saved, logger)
}

func runHeadless(ctx context.Context, w io.Writer, loop *sched.Loop, eng *engine.Engine, updates *latest, finished <-chan struct{}, logger *slog.Logger) error {
	var lastMsg string
	report := func(snap engine.Snapshot) {
		if snap.Message == lastMsg {
			return
		}
		lastMsg = snap.Message
		if _, err := fmt.Fprintln(w, snap.Message); err != nil {
			logger.Debug("failed to write status", "err", err)
		}
	}
	for {
		select {
		case snap := <-updates.ch:
			report(snap)
		case <-finished:
			select {
			case snap := <-updates.ch:
				report(snap)
			default:
			}
			return nil
		case <-ctx.Done():
			logger.Info("interrupted, stopping session")
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := loop.Call(stopCtx, eng.Stop); err != nil {
				logger.Warn("failed to stop session", "err", err)
			}
			return nil
		}
	}
}

func runTUI(ctx context.Context, text string, fromStdin bool, cfg model.Config, st *store.Store, loop *sched.Loop, eng *engine.Engine, updates *latest, saved <-chan model.RunRecord, logger *slog.Logger) error {
	footer := tui.FooterStats{}
	if totals, err := st.Totals(ctx); err != nil {
		logger.Warn("failed to load history totals", "err", err)
	} else {
		footer.Totals = totals
	}
	if runs, err := st.ListRuns(ctx, 1); err != nil {
		logger.Warn("failed to load last run", "err", err)
	} else if len(runs) == 1 {
		footer.Last = &runs[0]
	}

	controls := loopControls{loop: loop, eng: eng}
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if fromStdin {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	program := tea.NewProgram(tui.NewModel(text, controls, cfg.ResumeCountdown, footer), programOpts...)

	fwdCtx, stopFwd := context.WithCancel(ctx)
	defer stopFwd()
	go func() {
		for {
			select {
			case <-fwdCtx.Done():
				return
			case snap := <-updates.ch:
				program.Send(tui.SnapshotMsg(snap))
			case rec := <-saved:
				program.Send(tui.RunSavedMsg(rec))
			}
		}
	}()

	_, err := program.Run()
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := loop.Call(stopCtx, eng.Stop); serr != nil {
		logger.Warn("failed to stop session", "err", serr)
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
