// Package worker implements a long-lived goroutine that accepts at most one
// unit of work at a time.
//
// A Worker has a single-slot mailbox rather than a queue: NewWork succeeds only
// while the worker is idle and still running, and is evaluated atomically under
// the worker's own mutex. Each accepted Job runs under the ambient Snapshot
// (identity and trace span) captured by the assigning goroutine; the scoped
// activation is released on every exit path.
//
// Failures never kill the worker. A returned error or a panic is contained,
// forwarded to Job.OnError and reported to the Observer; a failing error hook
// is contained as well. Shutdown is cooperative: StopRunning refuses to take
// effect while a task is assigned.
//
//	w := worker.New(ctx, "io")
//	w.Start()
//	if !w.NewWork(job, ambient.Capture(ctx)) {
//		// busy or stopped, pick another worker
//	}
//	...
//	for !w.StopRunning() {
//		time.Sleep(10 * time.Millisecond)
//	}
//	<-w.Done()
package worker
