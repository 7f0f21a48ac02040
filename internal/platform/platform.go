// Package platform adapts the host operating system to the engine's emitter
// and focus source interfaces.
package platform

import (
	"errors"

	"github.com/verte-zerg/typewright/internal/engine"
)

// ErrUnsupported is returned by New when the host offers no way to read the
// foreground application or inject keystrokes.
var ErrUnsupported = errors.New("platform: keystroke injection is not supported on this system")

var (
	_ engine.Emitter     = (*Platform)(nil)
	_ engine.FocusSource = (*Platform)(nil)
	_ engine.Emitter     = (*Recorder)(nil)
	_ engine.FocusSource = Static("")
)
