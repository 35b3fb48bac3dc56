package worker

import "log/slog"

// Option configures a Worker at creation time.
type Option func(*Worker)

// WithObserver replaces the default logging observer. Use NewCompositeObserver to keep logging
// alongside metrics.
func WithObserver(observer Observer) Option {
	return func(w *Worker) {
		w.observer = observer
	}
}

// WithLogger sets the logger used by the default observer and for contained observer panics.
// A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.log = logger
		}
	}
}

// WithPriority sets the initial advisory priority.
func WithPriority(priority int) Option {
	return func(w *Worker) {
		w.priority = priority
	}
}
