package engine

import "log/slog"

// Guard remembers which application typing was aimed at and answers whether
// it is still in front. It holds no typing state.
type Guard struct {
	source FocusSource
	logger *slog.Logger

	target    AppID
	hasTarget bool

	last    AppID
	hasLast bool
}

// NewGuard returns a Guard with no target.
func NewGuard(source FocusSource, logger *slog.Logger) *Guard {
	return &Guard{source: source, logger: logger}
}

// Capture records the current foreground application as the target. When the
// source fails, the last observed application is used instead; with nothing
// observed the guard stays without a target and never reports focus loss.
func (g *Guard) Capture() (AppID, bool) {
	id, err := g.source.Foreground()
	if err != nil {
		g.logger.Warn("failed to read foreground application", "err", err)
		if !g.hasLast {
			return "", false
		}
		id = g.last
	}
	g.target = id
	g.hasTarget = true
	g.last = id
	g.hasLast = true
	return id, true
}

// Target returns the recorded target.
func (g *Guard) Target() (AppID, bool) {
	return g.target, g.hasTarget
}

// Reset forgets the target.
func (g *Guard) Reset() {
	g.target = ""
	g.hasTarget = false
}

// IsTargetForeground queries the source and reports whether the target is in
// front. It is true while no target is recorded. A successful query counts as
// an observation, so a later notification is compared against it.
func (g *Guard) IsTargetForeground() bool {
	if !g.hasTarget {
		return true
	}
	id, err := g.source.Foreground()
	if err != nil {
		g.logger.Debug("foreground query failed, using last observed", "err", err)
		if !g.hasLast {
			return true
		}
		id = g.last
	}
	g.last = id
	g.hasLast = true
	return id == g.target
}

// IsTarget reports whether id is the target, or true while none is recorded.
func (g *Guard) IsTarget(id AppID) bool {
	return !g.hasTarget || id == g.target
}

// Observe records a change notification and reports whether the foreground
// application actually changed.
func (g *Guard) Observe(id AppID) bool {
	changed := !g.hasLast || id != g.last
	g.last = id
	g.hasLast = true
	return changed
}
