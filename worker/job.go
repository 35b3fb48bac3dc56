package worker

import "context"

// Job is a unit of work together with the hooks the worker drives around it.
type Job interface {
	// DisplayName returns the label shown in the worker status while busy.
	DisplayName() string

	// Run executes the unit of work under the activated ambient context.
	Run(ctx context.Context) error

	// OnError is invoked once when Run fails (returned error or panic).
	OnError(ctx context.Context, err error)

	// Bound is called from NewWork, under the worker lock, before the job owns the slot. A
	// panicking Bound rejects the job. Implementations must not call back into the worker.
	Bound(w *Worker)

	// Released is called under the worker lock once the job finished and the slot is empty, so
	// the job and the worker turn idle together. Implementations must not call back into the
	// worker.
	Released(w *Worker)
}
