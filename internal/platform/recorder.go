package platform

import (
	"io"
	"sync"

	"github.com/verte-zerg/typewright/internal/engine"
)

// Recorder is a dry-run emitter. It writes every keystroke to an io.Writer and
// keeps the text a real editor would end up with.
type Recorder struct {
	mu         sync.Mutex
	w          io.Writer
	transcript []rune
}

// NewRecorder returns a Recorder writing to w; a nil w only keeps the transcript.
func NewRecorder(w io.Writer) *Recorder {
	if w == nil {
		w = io.Discard
	}
	return &Recorder{w: w}
}

// EmitCharacter implements engine.Emitter.
func (r *Recorder) EmitCharacter(c rune) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = append(r.transcript, c)
	_, err := io.WriteString(r.w, string(c))
	return err
}

// EmitControlKey implements engine.Emitter. Backspace is written as "\b".
func (r *Recorder) EmitControlKey(k engine.ControlKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out string
	switch k {
	case engine.KeyReturn:
		r.transcript = append(r.transcript, '\n')
		out = "\n"
	case engine.KeyBackspace:
		if n := len(r.transcript); n > 0 {
			r.transcript = r.transcript[:n-1]
		}
		out = "\b"
	}
	_, err := io.WriteString(r.w, out)
	return err
}

// Transcript returns the text typed so far with corrections applied.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.transcript)
}

// Static is a focus source that always reports the same application.
type Static engine.AppID

// Foreground implements engine.FocusSource.
func (s Static) Foreground() (engine.AppID, error) {
	return engine.AppID(s), nil
}
