package handoff

import (
	"context"
	"time"
)

// Runner is a unit of work. Run should honour ctx cancellation at its safe points: Stop and
// Interrupt only cancel ctx, they never force the goroutine to exit.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Nop is the Runner used when none is supplied; it does nothing.
var Nop Runner = RunnerFunc(func(context.Context) error { return nil })

// Sleep pauses the current unit of work for d, returning early with the cancellation cause when
// ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
