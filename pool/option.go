package pool

import (
	"context"
	"log/slog"

	"github.com/viant/handoff/worker"
)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the configuration for the manager.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithContext sets the base context handed to every spawned worker.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithLogger sets the manager logger; spawned workers log through it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithWorkerOptions appends options applied to every spawned worker.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(m *Manager) {
		m.workerOptions = append(m.workerOptions, opts...)
	}
}
