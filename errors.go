package handoff

import "errors"

// Sentinel errors. Use errors.Is to check them:
//
//	if _, err := task.Start(ctx); errors.Is(err, handoff.ErrAlreadyBound) { ... }
//
//	if errors.Is(context.Cause(ctx), handoff.ErrInterrupted) { ... } // inside a Runner
var (
	// ErrAlreadyBound is returned by Task.Start while the task is bound to a worker or
	// another Start is in progress.
	ErrAlreadyBound = errors.New("task already bound to a worker")

	// ErrStopped is the cancellation cause installed by Task.Stop.
	ErrStopped = errors.New("task stopped")

	// ErrInterrupted is the cancellation cause installed by Task.Interrupt.
	ErrInterrupted = errors.New("task interrupted")

	// ErrNoStarter is returned by Task.Start when the task was built without a pool.
	ErrNoStarter = errors.New("no starter configured")
)
