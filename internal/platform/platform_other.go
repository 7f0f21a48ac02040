//go:build !windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/verte-zerg/typewright/internal/engine"
)

const xdotoolTimeout = 2 * time.Second

var (
	execCommandContext = exec.CommandContext
	lookPath           = exec.LookPath
)

// Platform drives an X11 session through xdotool.
type Platform struct {
	tool string
}

// New locates xdotool and returns ErrUnsupported when it is missing.
func New() (*Platform, error) {
	tool, err := lookPath("xdotool")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Platform{tool: tool}, nil
}

// Foreground identifies the active window by its owning process id.
func (p *Platform) Foreground() (engine.AppID, error) {
	out, err := p.run("getactivewindow", "getwindowpid")
	if err != nil {
		return "", err
	}
	pid := strings.TrimSpace(out)
	if pid == "" {
		return "", errors.New("no active window")
	}
	return engine.AppID("pid:" + pid), nil
}

// EmitCharacter types r into the focused window.
func (p *Platform) EmitCharacter(r rune) error {
	_, err := p.run("type", "--delay", "0", "--", string(r))
	return err
}

// EmitControlKey presses a named key.
func (p *Platform) EmitControlKey(k engine.ControlKey) error {
	var name string
	switch k {
	case engine.KeyReturn:
		name = "Return"
	case engine.KeyBackspace:
		name = "BackSpace"
	default:
		return fmt.Errorf("unknown control key %d", k)
	}
	_, err := p.run("key", "--", name)
	return err
}

func (p *Platform) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), xdotoolTimeout)
	defer cancel()
	out, err := execCommandContext(ctx, p.tool, args...).Output()
	if err != nil {
		return "", fmt.Errorf("failed to run xdotool %s: %w", args[0], err)
	}
	return string(out), nil
}
