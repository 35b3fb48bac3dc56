// Package handoff hands units of work to long-lived worker goroutines.
//
// A worker accepts at most one task at a time. The task runs with the identity and trace span
// of the goroutine that handed it over, its failures never take the worker down, and stopping is
// always cooperative: a busy worker finishes its task before it exits.
//
// Most callers use the Service facade:
//
//	srv, _ := handoff.New()
//	task, err := srv.Go(ctx, handoff.RunnerFunc(func(ctx context.Context) error {
//		return handoff.Sleep(ctx, time.Second)
//	}), handoff.WithName("nap"))
//	...
//	task.Interrupt()
//	_ = srv.Shutdown(ctx)
//
// Lower level building blocks live in sub-packages: worker (the single-slot worker), pool (a
// reference Starter that reuses idle workers), ambient, identity and tracing.
package handoff
