package control

import (
	"context"

	"github.com/verte-zerg/typewright/internal/engine"
	"github.com/verte-zerg/typewright/internal/sched"
)

// LoopController runs every call on the loop that owns the engine.
type LoopController struct {
	loop *sched.Loop
	eng  *engine.Engine
}

// NewLoopController returns a Controller for eng, which must only be used from loop.
func NewLoopController(loop *sched.Loop, eng *engine.Engine) *LoopController {
	return &LoopController{loop: loop, eng: eng}
}

// Snapshot implements Controller.
func (c *LoopController) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.loop.Call(ctx, func() { snap = c.eng.Snapshot() })
	return snap, err
}

// Pause implements Controller.
func (c *LoopController) Pause(ctx context.Context) (bool, error) {
	var ok bool
	err := c.loop.Call(ctx, func() { ok = c.eng.RequestPause() })
	return ok, err
}

// Resume implements Controller.
func (c *LoopController) Resume(ctx context.Context, countdown int) (bool, error) {
	var ok bool
	err := c.loop.Call(ctx, func() { ok = c.eng.ResumeWithCountdown(countdown) })
	return ok, err
}

// Stop implements Controller.
func (c *LoopController) Stop(ctx context.Context) error {
	return c.loop.Call(ctx, c.eng.Stop)
}
