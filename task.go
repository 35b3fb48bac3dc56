package handoff

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/handoff/identity"
	"github.com/viant/handoff/worker"
)

// Starter binds a job to a worker: it either hands the job to an idle worker or starts a new one,
// and never returns a worker whose NewWork failed. pool.Manager is the default implementation.
type Starter interface {
	Start(ctx context.Context, job worker.Job, name string) (*worker.Worker, error)
}

// ErrorHandler observes a failed run. It is the override point for task failures; a panicking
// handler is contained by the worker.
type ErrorHandler func(ctx context.Context, task *Task, err error)

// TaskOption configures a Task.
type TaskOption func(*Task)

// WithName sets the task display name.
func WithName(name string) TaskOption {
	return func(t *Task) {
		t.name = name
	}
}

// WithErrorHandler sets the handler invoked when the runner fails.
func WithErrorHandler(handler ErrorHandler) TaskOption {
	return func(t *Task) {
		t.onError = handler
	}
}

// Task pairs a Runner with a display name and binds it to at most one worker at a time. The
// principal of the creating context is captured once, at construction, so the runner executes as
// its creator on whichever worker picks it up.
type Task struct {
	starter   Starter
	runner    Runner
	principal *identity.Principal
	onError   ErrorHandler

	mu       sync.Mutex
	name     string
	worker   *worker.Worker
	starting bool
	cancel   context.CancelCauseFunc
	pending  error
}

// NewTask creates an unbound task. A nil runner defaults to Nop.
func NewTask(ctx context.Context, starter Starter, runner Runner, opts ...TaskOption) *Task {
	if runner == nil {
		runner = Nop
	}
	ret := &Task{
		starter:   starter,
		runner:    runner,
		principal: identity.FromContext(ctx).Clone(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Go creates a task and starts it right away.
func Go(ctx context.Context, starter Starter, runner Runner, opts ...TaskOption) (*Task, error) {
	return NewTask(ctx, starter, runner, opts...).Start(ctx)
}

// Start binds the task to a worker. The trace span active on ctx is carried over to the worker
// together with the principal captured at construction. Start fails with ErrAlreadyBound while
// the task is bound or being started; it returns the task to allow chaining.
func (t *Task) Start(ctx context.Context) (*Task, error) {
	if t.starter == nil {
		return t, ErrNoStarter
	}
	t.mu.Lock()
	if t.worker != nil || t.starting {
		t.mu.Unlock()
		return t, ErrAlreadyBound
	}
	t.starting = true
	name := t.name
	t.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	_, err := t.starter.Start(identity.WithPrincipal(ctx, t.principal), t, name)

	t.mu.Lock()
	t.starting = false
	t.mu.Unlock()
	if err != nil {
		return t, fmt.Errorf("failed to start task %q: %w", name, err)
	}
	return t, nil
}

// Stop asks the running task to finish by cancelling its context with ErrStopped. It never
// forces the worker goroutine to exit; it is a no-op while unbound.
func (t *Task) Stop() {
	t.signal(ErrStopped)
}

// Interrupt cancels the running task's context with ErrInterrupted; no-op while unbound.
func (t *Task) Interrupt() {
	t.signal(ErrInterrupted)
}

// IsAlive reports whether the task is bound to a worker.
func (t *Task) IsAlive() bool {
	return t.Worker() != nil
}

// Worker returns the bound worker, nil while unbound.
func (t *Task) Worker() *worker.Worker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.worker
}

// Principal returns a copy of the principal captured at construction.
func (t *Task) Principal() *identity.Principal {
	return t.principal.Clone()
}

// TaskError is invoked by the worker when the runner failed.
func (t *Task) TaskError(ctx context.Context, err error) {
	if t.onError != nil {
		t.onError(ctx, t, err)
	}
}

// Name returns the bound worker's name, "" while unbound.
func (t *Task) Name() string {
	if w := t.Worker(); w != nil {
		return w.Name()
	}
	return ""
}

// SetName renames the bound worker until the current run completes, or sets the task display
// name while unbound.
func (t *Task) SetName(name string) {
	if w := t.Worker(); w != nil {
		w.SetName(name)
		return
	}
	t.mu.Lock()
	t.name = name
	t.mu.Unlock()
}

// Priority returns the bound worker's priority, 0 while unbound.
func (t *Task) Priority() int {
	if w := t.Worker(); w != nil {
		return w.Priority()
	}
	return 0
}

// SetPriority sets the bound worker's priority; no-op while unbound.
func (t *Task) SetPriority(priority int) {
	if w := t.Worker(); w != nil {
		w.SetPriority(priority)
	}
}

// DisplayName implements worker.Job.
func (t *Task) DisplayName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.name == "" {
		return fmt.Sprintf("%T", t.runner)
	}
	return t.name
}

// Run implements worker.Job. The runner gets a context cancelled by Stop or Interrupt.
func (t *Task) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	t.mu.Lock()
	t.cancel = cancel
	if t.pending != nil {
		cancel(t.pending)
		t.pending = nil
	}
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.cancel = nil
		t.mu.Unlock()
		cancel(nil)
	}()
	return t.runner.Run(ctx)
}

// OnError implements worker.Job.
func (t *Task) OnError(ctx context.Context, err error) {
	t.TaskError(ctx, err)
}

// Bound implements worker.Job.
func (t *Task) Bound(w *worker.Worker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.worker = w
}

// Released implements worker.Job.
func (t *Task) Released(w *worker.Worker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.worker == w {
		t.worker = nil
	}
	t.pending = nil
}

func (t *Task) signal(cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.worker == nil {
		return
	}
	if t.cancel != nil {
		t.cancel(cause)
		return
	}
	t.pending = cause
}
