// Package engine implements the typing session state machine: countdown,
// paced emission, simulated mistakes and focus-driven pausing.
//
// An Engine is not safe for concurrent use. Every method, and every callback
// it hands to its Scheduler, must run on one execution context (see sched.Loop).
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/typewright/internal/cadence"
	"github.com/verte-zerg/typewright/internal/sched"
)

// Deps are the collaborators an Engine drives.
type Deps struct {
	Emitter   Emitter
	Focus     FocusSource
	Clock     sched.Clock
	Scheduler sched.Scheduler
	Rand      cadence.Rand
	Logger    *slog.Logger
	Hooks     Hooks
}

type session struct {
	text     []rune
	cursor   int
	opts     StartOptions
	interval time.Duration
	pacer    *cadence.Pacer
	mistakes *cadence.Mistakes
	// pending is the correct rune of an in-flight mistake cycle.
	pending *rune
	// counted is the cursor whose rune was last offered to the mistake
	// simulator, so a rune retried after a pause is not counted twice.
	counted int

	startedAt    time.Time
	mistakeCount int
	pauseCount   int
}

// Engine owns the current session and is its only mutator.
type Engine struct {
	emitter Emitter
	guard   *Guard
	clock   sched.Clock
	sched   sched.Scheduler
	rnd     cadence.Rand
	logger  *slog.Logger
	hooks   Hooks

	state       State
	countdown   int
	thinking    bool
	pauseReason PauseReason
	idleMessage string

	session *session

	// timer is the single outstanding deferred action. gen invalidates
	// callbacks that were already in flight when the timer was cancelled.
	timer sched.Timer
	gen   uint64

	lastCompletedAt time.Time
	lastDuration    time.Duration
}

// New returns an idle Engine.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		emitter:     deps.Emitter,
		guard:       NewGuard(deps.Focus, logger),
		clock:       deps.Clock,
		sched:       deps.Scheduler,
		rnd:         deps.Rand,
		logger:      logger,
		hooks:       deps.Hooks,
		idleMessage: "Ready",
	}
}

// Start begins a new session, discarding any previous one. It returns false,
// leaving the engine idle, when text has nothing to type.
func (e *Engine) Start(text string, opts StartOptions) bool {
	e.cancel()
	e.session = nil
	e.guard.Reset()
	e.thinking = false
	e.countdown = 0
	e.pauseReason = PauseNone

	if strings.TrimSpace(text) == "" {
		e.idleMessage = "Nothing to type"
		e.setState(Idle)
		e.notify()
		return false
	}

	runes := []rune(text)
	budget := cadence.PlanBudget(runes, opts.WPM, opts.Duration.Seconds())
	e.session = &session{
		text:     runes,
		opts:     opts,
		interval: sched.Seconds(cadence.CharInterval(opts.WPM)),
		pacer:    cadence.NewPacer(e.rnd, budget),
		mistakes: cadence.NewMistakes(e.rnd, opts.Mistakes),
		counted:  -1,
	}
	e.logger.Info("session started",
		"chars", len(runes),
		"wpm", opts.WPM,
		"requested", opts.Duration,
		"mistakes", opts.Mistakes,
		"per_sentence", budget.PerSentence,
		"per_paragraph", budget.PerParagraph,
	)
	e.beginCountdown(opts.Countdown)
	return true
}

// Stop ends the session from any state and clears completion bookkeeping.
// Stopping an idle engine only clears that bookkeeping.
func (e *Engine) Stop() {
	e.cancel()
	wasIdle := e.state == Idle
	hadCompletion := !e.lastCompletedAt.IsZero() || e.lastDuration != 0
	e.session = nil
	e.guard.Reset()
	e.countdown = 0
	e.thinking = false
	e.pauseReason = PauseNone
	e.lastCompletedAt = time.Time{}
	e.lastDuration = 0
	if wasIdle {
		if hadCompletion {
			e.notify()
		}
		return
	}
	e.logger.Info("session stopped")
	e.idleMessage = "Stopped"
	e.setState(Idle)
	e.notify()
}

// RequestPause pauses a typing session. It reports whether the engine was typing.
func (e *Engine) RequestPause() bool {
	if e.state != Typing {
		return false
	}
	e.pause(PauseManual)
	return true
}

// ResumeWithCountdown restarts a paused session after a countdown of seconds.
// It reports whether the engine was paused.
func (e *Engine) ResumeWithCountdown(seconds int) bool {
	if e.state != Paused {
		return false
	}
	e.logger.Info("resuming", "countdown", seconds)
	e.pauseReason = PauseNone
	e.beginCountdown(seconds)
	return true
}

// FocusChanged consumes a foreground-application change notification.
// Repeated notifications are harmless: the decision depends only on the
// state and on whether id is the target.
func (e *Engine) FocusChanged(id AppID) {
	if e.guard.Observe(id) {
		e.logger.Debug("foreground changed", "app", id)
	}
	switch e.state {
	case Typing:
		if e.guard.IsTarget(id) {
			return
		}
		if e.session.pending != nil {
			e.pause(PauseMistakeAbort)
		} else {
			e.pause(PauseFocusLost)
		}
	case Paused:
		if e.pauseReason.autoResumes() && e.guard.IsTarget(id) {
			e.resume()
		}
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Snapshot returns the observable state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		State:           e.state,
		Countdown:       e.countdown,
		Message:         e.message(),
		Thinking:        e.thinking,
		PauseReason:     e.pauseReason,
		LastCompletedAt: e.lastCompletedAt,
		LastDuration:    e.lastDuration,
	}
	if target, ok := e.guard.Target(); ok {
		snap.Target = target
	}
	if s := e.session; s != nil {
		snap.Cursor = s.cursor
		snap.Total = len(s.text)
		snap.Progress = progress(s)
	}
	return snap
}

func progress(s *session) float64 {
	if len(s.text) == 0 || s.cursor >= len(s.text) {
		return 1
	}
	return float64(s.cursor) / float64(len(s.text))
}

func (e *Engine) message() string {
	switch e.state {
	case CountingDown:
		return fmt.Sprintf("Starting in %d...", e.countdown)
	case Typing:
		pct := int(progress(e.session) * 100)
		switch {
		case e.session.pending != nil:
			return fmt.Sprintf("Fixing a typo... %d%%", pct)
		case e.thinking:
			return fmt.Sprintf("Thinking... %d%%", pct)
		default:
			return fmt.Sprintf("Typing %d%%", pct)
		}
	case Paused:
		switch e.pauseReason {
		case PauseFocusLost:
			return "Paused: target application lost focus"
		case PauseMistakeAbort:
			return "Paused: focus lost before a typo was corrected"
		default:
			return "Paused"
		}
	default:
		return e.idleMessage
	}
}

func (e *Engine) beginCountdown(seconds int) {
	e.thinking = false
	if seconds <= 0 {
		e.beginTyping()
		return
	}
	e.countdown = seconds
	e.setState(CountingDown)
	e.notify()
	e.schedule(time.Second, e.countdownTick)
}

func (e *Engine) countdownTick() {
	if e.state != CountingDown {
		return
	}
	e.countdown--
	if e.countdown <= 0 {
		e.beginTyping()
		return
	}
	e.notify()
	e.schedule(time.Second, e.countdownTick)
}

func (e *Engine) beginTyping() {
	s := e.session
	e.countdown = 0
	if _, ok := e.guard.Target(); !ok {
		if target, ok := e.guard.Capture(); ok {
			e.logger.Info("target captured", "app", target)
		}
	}
	e.thinking = false
	s.pending = nil
	if s.startedAt.IsZero() {
		s.startedAt = e.clock.Now()
	}
	e.setState(Typing)
	e.notify()
	e.schedule(s.interval, e.tick)
}

// resume continues typing after focus returned, without a countdown.
func (e *Engine) resume() {
	e.logger.Info("focus returned, resuming")
	e.pauseReason = PauseNone
	e.thinking = false
	e.setState(Typing)
	e.notify()
	e.schedule(e.session.interval, e.tick)
}

func (e *Engine) pause(reason PauseReason) {
	e.cancel()
	s := e.session
	if s.pending != nil {
		e.logger.Info("abandoning typo correction", "cursor", s.cursor)
		s.pending = nil
	}
	s.pauseCount++
	e.thinking = false
	e.pauseReason = reason
	e.logger.Info("session paused", "reason", string(reason), "cursor", s.cursor)
	e.setState(Paused)
	if e.hooks.OnPause != nil {
		e.hooks.OnPause(reason)
	}
	e.notify()
	if reason.autoResumes() {
		e.schedule(FocusRecheckInterval, e.recheckFocus)
	}
}

// recheckFocus polls the guard while paused for focus, so the session resumes
// even when the change back to the target was never reported.
func (e *Engine) recheckFocus() {
	if e.state != Paused || !e.pauseReason.autoResumes() || e.session == nil {
		return
	}
	if e.guard.IsTargetForeground() {
		e.resume()
		return
	}
	e.schedule(FocusRecheckInterval, e.recheckFocus)
}

func (e *Engine) tick() {
	s := e.session
	if e.state != Typing || s == nil {
		return
	}
	if s.cursor >= len(s.text) {
		e.complete()
		return
	}
	if !e.guard.IsTargetForeground() {
		e.pause(PauseFocusLost)
		return
	}
	c := s.text[s.cursor]
	due := false
	if s.counted != s.cursor {
		s.counted = s.cursor
		due = s.mistakes.Due(c)
	}
	if due {
		if wrong, ok := s.mistakes.Substitute(c); ok {
			e.startMistake(c, wrong)
			return
		}
		e.logger.Debug("no neighbor for mistake, typing correctly", "rune", string(c))
	}
	e.emit(c)
	e.advance(c)
}

func (e *Engine) startMistake(correct, wrong rune) {
	s := e.session
	s.pending = &correct
	s.mistakeCount++
	e.emit(wrong)
	e.thinking = true
	if e.hooks.OnMistake != nil {
		e.hooks.OnMistake(wrong, correct)
	}
	e.notify()
	e.schedule(sched.Seconds(cadence.CorrectionDelay), e.correct)
}

func (e *Engine) correct() {
	s := e.session
	if e.state != Typing || s == nil || s.pending == nil {
		return
	}
	if !e.guard.IsTargetForeground() {
		e.pause(PauseMistakeAbort)
		return
	}
	c := *s.pending
	s.pending = nil
	e.emitKey(KeyBackspace)
	e.emit(c)
	e.advance(c)
}

// advance moves the cursor past c, which has just been emitted, and schedules
// the next tick. The tick after the last rune completes the session, so a
// trailing pause still counts towards its duration.
func (e *Engine) advance(c rune) {
	s := e.session
	s.cursor++
	if e.hooks.OnEmit != nil {
		e.hooks.OnEmit(c)
	}
	var prev rune
	if s.cursor >= 2 {
		prev = s.text[s.cursor-2]
	}
	extra := s.pacer.Delay(c, prev, s.text[s.cursor:])
	e.thinking = cadence.Thinking(extra)
	delay := s.interval + sched.Seconds(extra)
	if e.hooks.OnDelay != nil {
		e.hooks.OnDelay(delay)
	}
	e.notify()
	e.schedule(delay, e.tick)
}

func (e *Engine) complete() {
	e.cancel()
	s := e.session
	now := e.clock.Now()
	e.lastCompletedAt = now
	e.lastDuration = now.Sub(s.startedAt)
	e.thinking = false
	e.idleMessage = fmt.Sprintf("Done in %s", e.lastDuration.Round(time.Second))
	e.logger.Info("session completed", "chars", len(s.text), "duration", e.lastDuration, "mistakes", s.mistakeCount, "pauses", s.pauseCount)
	e.setState(Idle)
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(Summary{
			StartedAt: s.startedAt,
			EndedAt:   now,
			Chars:     len(s.text),
			WPM:       s.opts.WPM,
			Requested: s.opts.Duration,
			Mistakes:  s.mistakeCount,
			Pauses:    s.pauseCount,
		})
	}
	e.notify()
}

// emit sends one logical character. Failures are logged and otherwise
// ignored; the cursor still advances.
func (e *Engine) emit(c rune) {
	if c == '\n' {
		e.emitKey(KeyReturn)
		return
	}
	if err := e.emitter.EmitCharacter(c); err != nil {
		e.logger.Warn("failed to emit character", "rune", string(c), "err", err)
	}
}

func (e *Engine) emitKey(k ControlKey) {
	if err := e.emitter.EmitControlKey(k); err != nil {
		e.logger.Warn("failed to emit control key", "key", k.String(), "err", err)
	}
}

// schedule replaces the outstanding deferred action with f after d.
func (e *Engine) schedule(d time.Duration, f func()) {
	e.cancel()
	gen := e.gen
	e.timer = e.sched.AfterFunc(d, func() {
		if gen != e.gen {
			return
		}
		e.timer = nil
		f()
	})
}

// cancel drops the outstanding deferred action, including one whose timer has
// already fired but whose callback has not run yet.
func (e *Engine) cancel() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) setState(to State) {
	if to == e.state {
		return
	}
	from := e.state
	e.state = to
	e.logger.Debug("state changed", "from", from.String(), "to", to.String())
	if e.hooks.OnStateChange != nil {
		e.hooks.OnStateChange(from, to)
	}
}

func (e *Engine) notify() {
	if e.hooks.OnChange != nil {
		e.hooks.OnChange(e.Snapshot())
	}
}
