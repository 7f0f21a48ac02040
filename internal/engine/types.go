package engine

import (
	"time"
)

// Defaults applied by callers that do not override them.
const (
	DefaultWPM             = 60
	DefaultCountdown       = 10
	DefaultResumeCountdown = 5
)

// FocusRecheckInterval is how often a session paused for focus asks the focus
// source whether the target is back in front.
const FocusRecheckInterval = time.Second

// State is the lifecycle state of a typing session.
type State int

const (
	Idle State = iota
	CountingDown
	Typing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting-down"
	case Typing:
		return "typing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// PauseReason records why a session left Typing.
type PauseReason string

const (
	PauseNone         PauseReason = ""
	PauseFocusLost    PauseReason = "focus-lost"
	PauseMistakeAbort PauseReason = "mistake-abort"
	PauseManual       PauseReason = "manual"
)

// autoResumes reports whether the session continues on its own once the
// target application is back in front.
func (r PauseReason) autoResumes() bool {
	return r == PauseFocusLost || r == PauseMistakeAbort
}

// ControlKey is a non-printing key the engine asks the emitter to press.
type ControlKey int

const (
	KeyReturn ControlKey = iota
	KeyBackspace
)

func (k ControlKey) String() string {
	switch k {
	case KeyReturn:
		return "return"
	case KeyBackspace:
		return "backspace"
	default:
		return "unknown"
	}
}

// AppID identifies a foreground application.
type AppID string

// Emitter turns logical characters into platform input events.
type Emitter interface {
	EmitCharacter(r rune) error
	EmitControlKey(k ControlKey) error
}

// FocusSource reports the application that currently has input focus.
type FocusSource interface {
	Foreground() (AppID, error)
}

// StartOptions configures a new session.
type StartOptions struct {
	WPM float64
	// Countdown is the number of seconds before typing begins.
	Countdown int
	// Duration is the requested total session length; zero means none.
	Duration time.Duration
	Mistakes bool
}

// Snapshot is the observable state rendered by user interfaces.
type Snapshot struct {
	State           State
	Countdown       int
	Message         string
	Thinking        bool
	Progress        float64
	Cursor          int
	Total           int
	Target          AppID
	PauseReason     PauseReason
	LastCompletedAt time.Time
	LastDuration    time.Duration
}

// Summary describes a completed session.
type Summary struct {
	StartedAt time.Time
	EndedAt   time.Time
	Chars     int
	WPM       float64
	Requested time.Duration
	Mistakes  int
	Pauses    int
}

// Duration is the elapsed time from the first typed character to completion.
func (s Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Hooks are optional callbacks invoked on the engine's execution context.
type Hooks struct {
	OnChange      func(Snapshot)
	OnStateChange func(from, to State)
	OnEmit        func(r rune)
	OnDelay       func(d time.Duration)
	OnMistake     func(wrong, correct rune)
	OnPause       func(reason PauseReason)
	OnComplete    func(Summary)
}

// Merge returns hooks that call h and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnChange: func(s Snapshot) {
			if h.OnChange != nil {
				h.OnChange(s)
			}
			if other.OnChange != nil {
				other.OnChange(s)
			}
		},
		OnStateChange: func(from, to State) {
			if h.OnStateChange != nil {
				h.OnStateChange(from, to)
			}
			if other.OnStateChange != nil {
				other.OnStateChange(from, to)
			}
		},
		OnEmit: func(r rune) {
			if h.OnEmit != nil {
				h.OnEmit(r)
			}
			if other.OnEmit != nil {
				other.OnEmit(r)
			}
		},
		OnDelay: func(d time.Duration) {
			if h.OnDelay != nil {
				h.OnDelay(d)
			}
			if other.OnDelay != nil {
				other.OnDelay(d)
			}
		},
		OnMistake: func(wrong, correct rune) {
			if h.OnMistake != nil {
				h.OnMistake(wrong, correct)
			}
			if other.OnMistake != nil {
				other.OnMistake(wrong, correct)
			}
		},
		OnPause: func(reason PauseReason) {
			if h.OnPause != nil {
				h.OnPause(reason)
			}
			if other.OnPause != nil {
				other.OnPause(reason)
			}
		},
		OnComplete: func(s Summary) {
			if h.OnComplete != nil {
				h.OnComplete(s)
			}
			if other.OnComplete != nil {
				other.OnComplete(s)
			}
		},
	}
}
