package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viant/handoff/tracing"
)

// Observer receives worker lifecycle callbacks. Implementations must be fast and must not block;
// a panicking observer is contained by the worker.
type Observer interface {
	// OnWorkerStarted is called once from the worker goroutine when it starts.
	OnWorkerStarted(w *Worker)

	// OnWorkerStopped is called once when the goroutine terminates.
	OnWorkerStopped(w *Worker)

	// OnTaskStarted is called under the activated task context, before the job runs.
	OnTaskStarted(ctx context.Context, w *Worker, task string)

	// OnTaskFailed is called when the job returned an error or panicked.
	OnTaskFailed(ctx context.Context, w *Worker, task string, err error)

	// OnHookFailed is called when Job.OnError itself panicked.
	OnHookFailed(ctx context.Context, w *Worker, task string, err error)

	// OnTaskCompleted is called after the activation was released, for successes and failures.
	OnTaskCompleted(ctx context.Context, w *Worker, task string, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
type NoopObserver struct{}

func (NoopObserver) OnWorkerStarted(w *Worker)                                           {}
func (NoopObserver) OnWorkerStopped(w *Worker)                                           {}
func (NoopObserver) OnTaskStarted(ctx context.Context, w *Worker, task string)           {}
func (NoopObserver) OnTaskFailed(ctx context.Context, w *Worker, task string, err error) {}
func (NoopObserver) OnHookFailed(ctx context.Context, w *Worker, task string, err error) {}
func (NoopObserver) OnTaskCompleted(ctx context.Context, w *Worker, task string, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkerStarted(w *Worker) {
	for _, o := range c.observers {
		o.OnWorkerStarted(w)
	}
}

func (c *CompositeObserver) OnWorkerStopped(w *Worker) {
	for _, o := range c.observers {
		o.OnWorkerStopped(w)
	}
}

func (c *CompositeObserver) OnTaskStarted(ctx context.Context, w *Worker, task string) {
	for _, o := range c.observers {
		o.OnTaskStarted(ctx, w, task)
	}
}

func (c *CompositeObserver) OnTaskFailed(ctx context.Context, w *Worker, task string, err error) {
	for _, o := range c.observers {
		o.OnTaskFailed(ctx, w, task, err)
	}
}

func (c *CompositeObserver) OnHookFailed(ctx context.Context, w *Worker, task string, err error) {
	for _, o := range c.observers {
		o.OnHookFailed(ctx, w, task, err)
	}
}

func (c *CompositeObserver) OnTaskCompleted(ctx context.Context, w *Worker, task string, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnTaskCompleted(ctx, w, task, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs worker and task lifecycle events. If logger
// is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWorkerStarted(w *Worker) {
	o.Logger.Debug("worker_started", slog.String("worker", w.Name()), slog.String("worker_id", w.ID()))
}

func (o *LoggingObserver) OnWorkerStopped(w *Worker) {
	o.Logger.Info("worker_stopped", slog.String("worker", w.Name()), slog.String("worker_id", w.ID()))
}

func (o *LoggingObserver) OnTaskStarted(ctx context.Context, w *Worker, task string) {
	o.Logger.DebugContext(ctx, "task_entered", taskAttrs(ctx, w, task)...)
}

func (o *LoggingObserver) OnTaskFailed(ctx context.Context, w *Worker, task string, err error) {
	o.Logger.InfoContext(ctx, "task_error", append(taskAttrs(ctx, w, task), slog.Any("error", err))...)
}

func (o *LoggingObserver) OnHookFailed(ctx context.Context, w *Worker, task string, err error) {
	o.Logger.WarnContext(ctx, "task_error_hook_failed", append(taskAttrs(ctx, w, task), slog.Any("error", err))...)
}

func (o *LoggingObserver) OnTaskCompleted(ctx context.Context, w *Worker, task string, err error, d time.Duration) {
	o.Logger.DebugContext(ctx, "task_left",
		slog.String("worker", w.Name()),
		slog.String("worker_id", w.ID()),
		slog.String("task", task),
		slog.Duration("duration", d),
		slog.Bool("failed", err != nil),
	)
}

// taskAttrs identifies the task and, when ctx carries one, the span it runs under.
func taskAttrs(ctx context.Context, w *Worker, task string) []any {
	ret := []any{
		slog.String("worker", w.Name()),
		slog.String("worker_id", w.ID()),
		slog.String("task", task),
	}
	if span, ok := tracing.SpanFromContext(ctx); ok {
		sc := span.SpanContext()
		ret = append(ret, slog.String("trace_id", sc.TraceID().String()), slog.String("span_id", sc.SpanID().String()))
	}
	return ret
}

// Metrics collects simple counters and aggregate task durations.
type Metrics struct {
	workersStarted atomic.Int64
	workersStopped atomic.Int64
	tasksStarted   atomic.Int64
	tasksFailed    atomic.Int64
	hooksFailed    atomic.Int64
	tasksCompleted atomic.Int64
	totalDuration  atomic.Int64 // nanoseconds
}

// MetricsSnapshot is an immutable snapshot of Metrics.
type MetricsSnapshot struct {
	WorkersStarted int64
	WorkersStopped int64
	TasksStarted   int64
	TasksCompleted int64
	TasksFailed    int64
	HooksFailed    int64
	InFlight       int64
	AvgDuration    time.Duration
}

func (m *Metrics) OnWorkerStarted(w *Worker) { m.workersStarted.Add(1) }

func (m *Metrics) OnWorkerStopped(w *Worker) { m.workersStopped.Add(1) }

func (m *Metrics) OnTaskStarted(ctx context.Context, w *Worker, task string) {
	m.tasksStarted.Add(1)
}

func (m *Metrics) OnTaskFailed(ctx context.Context, w *Worker, task string, err error) {
	m.tasksFailed.Add(1)
}

func (m *Metrics) OnHookFailed(ctx context.Context, w *Worker, task string, err error) {
	m.hooksFailed.Add(1)
}

func (m *Metrics) OnTaskCompleted(ctx context.Context, w *Worker, task string, err error, d time.Duration) {
	m.tasksCompleted.Add(1)
	m.totalDuration.Add(d.Nanoseconds())
}

// Snapshot returns a snapshot of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	started := m.tasksStarted.Load()
	completed := m.tasksCompleted.Load()
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(m.totalDuration.Load() / completed)
	}
	return MetricsSnapshot{
		WorkersStarted: m.workersStarted.Load(),
		WorkersStopped: m.workersStopped.Load(),
		TasksStarted:   started,
		TasksCompleted: completed,
		TasksFailed:    m.tasksFailed.Load(),
		HooksFailed:    m.hooksFailed.Load(),
		InFlight:       started - completed,
		AvgDuration:    avg,
	}
}
