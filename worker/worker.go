package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/viant/handoff/ambient"
	"github.com/viant/handoff/internal/clock"
	"github.com/viant/handoff/internal/idgen"
)

// Worker is a reusable goroutine with a single-slot mailbox. All methods are safe for concurrent
// use.
type Worker struct {
	id       string
	base     context.Context
	observer Observer
	log      *slog.Logger

	mu        sync.Mutex
	name      string
	idleName  string
	priority  int
	running   bool
	task      Job
	snapshot  ambient.Snapshot
	status    Status
	idleSince time.Time
	current   context.Context

	wake      chan struct{}
	done      chan struct{}
	startOnce sync.Once
}

// New creates an idle worker named name. ctx is the worker's own ambient context: values it
// carries are visible to every job, and it is what Context returns while idle. Call Start to
// launch the goroutine.
func New(ctx context.Context, name string, opts ...Option) *Worker {
	if ctx == nil {
		ctx = context.Background()
	}
	now := clock.Now()
	w := &Worker{
		id:        idgen.Short(),
		base:      ctx,
		log:       slog.Default(),
		name:      name,
		running:   true,
		status:    Status{Phase: PhaseIdle, Since: now},
		idleSince: now,
		current:   ctx,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.observer == nil {
		w.observer = NewLoggingObserver(w.log)
	}
	w.log = w.log.With("worker", name, "worker_id", w.id)
	return w
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Done returns a channel closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// NewWork hands job to the worker. It succeeds iff the worker is idle and still running; it
// never blocks and has no side effect when it returns false. snap is the ambient state the job
// runs under, captured by the caller on its own goroutine.
func (w *Worker) NewWork(job Job, snap ambient.Snapshot) bool {
	if job == nil {
		return false
	}
	name := displayName(job)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.task != nil || !w.running {
		return false
	}
	if err := bind(job, w); err != nil {
		w.log.Error("job rejected", "task", name, "error", err)
		return false
	}
	w.task = job
	w.snapshot = snap
	w.idleName = w.name
	w.status = Status{Phase: PhaseAssigned, Task: name, Since: clock.Now()}
	w.signal()
	return true
}

// StopRunning asks the worker to terminate. With an empty slot the loop is woken and exits,
// and true is returned. While a task is assigned the request is recorded (no further NewWork
// succeeds) but false is returned: an in-flight task is never interrupted, callers retry
// once it completes.
func (w *Worker) StopRunning() bool {
	w.mu.Lock()
	w.running = false
	busy := w.task != nil
	w.mu.Unlock()
	if busy {
		return false
	}
	w.signal()
	return true
}

// IsWorking reports whether a task holds the slot.
func (w *Worker) IsWorking() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.task != nil
}

// IsRunning reports whether no stop was requested yet.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// IdleFor returns how long the slot has been empty, 0 while working.
func (w *Worker) IdleFor() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.task != nil {
		return 0
	}
	return clock.Since(w.idleSince)
}

// Status returns the current status record.
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Phase returns the current lifecycle phase.
func (w *Worker) Phase() Phase {
	return w.Status().Phase
}

// Context returns the worker's current ambient context: the activated task context while a job
// runs, the worker's base context otherwise.
func (w *Worker) Context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return w.id }

func (w *Worker) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

// SetName renames the worker. A rename while a task runs lasts until that task completes.
func (w *Worker) SetName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

// Priority returns the advisory priority label. Goroutines have no scheduling priority; the
// value is carried for pool policies and observers.
func (w *Worker) Priority() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.priority
}

func (w *Worker) SetPriority(priority int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.priority = priority
}

func (w *Worker) String() string {
	return fmt.Sprintf("%s[%s] %v", w.Name(), w.id, w.Status())
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer close(w.done)
	w.notify(func(o Observer) { o.OnWorkerStarted(w) })
	for {
		job, snap, ok := w.await()
		if !ok {
			break
		}
		w.execute(job, snap)
	}
	w.mu.Lock()
	w.status = Status{Phase: PhaseTerminated, Since: clock.Now()}
	w.mu.Unlock()
	w.notify(func(o Observer) { o.OnWorkerStopped(w) })
}

// await blocks while idle. It returns false once the worker was stopped with an empty slot.
func (w *Worker) await() (Job, ambient.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.task == nil && w.running {
		w.mu.Unlock()
		<-w.wake
		w.mu.Lock()
	}
	if w.task == nil {
		return nil, ambient.Snapshot{}, false
	}
	w.status = Status{Phase: PhaseRunning, Task: w.status.Task, Since: clock.Now()}
	return w.task, w.snapshot, true
}

func (w *Worker) execute(job Job, snap ambient.Snapshot) {
	name := displayName(job)
	started := clock.Now()
	err := w.invoke(job, snap, name)
	w.notify(func(o Observer) { o.OnTaskCompleted(w.base, w, name, err, clock.Since(started)) })

	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = w.idleName
	w.idleSince = clock.Now()
	w.status = Status{Phase: PhaseIdle, Since: w.idleSince}
	w.task = nil
	w.snapshot = ambient.Snapshot{}
	w.safely("release", func() { job.Released(w) })
}

// invoke runs job inside the scoped activation of snap; the activation is released and the
// worker context restored on every exit path.
func (w *Worker) invoke(job Job, snap ambient.Snapshot, name string) (err error) {
	ctx, guard := ambient.Enter(w.base, snap, w.label(name))
	guard.Annotate(map[string]string{
		"worker.id":       w.id,
		"worker.name":     w.Name(),
		"worker.priority": strconv.Itoa(w.Priority()),
		"task":            name,
	})
	w.setCurrent(ctx)
	defer func() {
		guard.Release(err)
		w.setCurrent(w.base)
	}()

	w.notify(func(o Observer) { o.OnTaskStarted(ctx, w, name) })
	if err = call(ctx, job); err == nil {
		return nil
	}
	taskErr := err
	w.notify(func(o Observer) { o.OnTaskFailed(ctx, w, name, taskErr) })
	if hookErr := callHook(ctx, job, taskErr); hookErr != nil {
		w.notify(func(o Observer) { o.OnHookFailed(ctx, w, name, hookErr) })
	}
	return err
}

func (w *Worker) label(task string) string {
	return fmt.Sprintf("%s[%s] %s", w.Name(), w.id, task)
}

func (w *Worker) setCurrent(ctx context.Context) {
	w.mu.Lock()
	w.current = ctx
	w.mu.Unlock()
}

// notify delivers an event to the observer; a panicking observer is logged and ignored.
func (w *Worker) notify(fn func(o Observer)) {
	w.safely("observer", func() { fn(w.observer) })
}

func (w *Worker) safely(what string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			w.log.Error("recovered "+what+" panic", "error", panicToError(v))
		}
	}()
	fn()
}

// displayName returns the job label, falling back to its type when DisplayName panics or is empty.
func displayName(job Job) (name string) {
	defer func() {
		if recover() != nil || name == "" {
			name = fmt.Sprintf("%T", job)
		}
	}()
	return job.DisplayName()
}

func bind(job Job, w *Worker) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicToError(v)
		}
	}()
	job.Bound(w)
	return nil
}

func call(ctx context.Context, job Job) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicToError(v)
		}
	}()
	return job.Run(ctx)
}

func callHook(ctx context.Context, job Job, cause error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicToError(v)
		}
	}()
	job.OnError(ctx, cause)
	return nil
}
