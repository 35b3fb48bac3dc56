package handoff

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/viant/handoff/pool"
	"github.com/viant/handoff/tracing"
	"github.com/viant/handoff/worker"
)

// Service wires a pool manager, logging and tracing together and creates tasks bound to that pool.
type Service struct {
	config     *Config
	logger     *slog.Logger
	output     io.Writer
	observers  []worker.Observer
	metrics    *worker.Metrics
	pool       *pool.Manager
	tracingErr error
}

// New creates a service with DefaultConfig unless WithConfig is supplied.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig(), output: os.Stdout, metrics: &worker.Metrics{}}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewFromConfig creates a service from config; options are applied afterwards.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return New(append([]Option{WithConfig(config)}, options...)...)
}

func (s *Service) init() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.tracingErr != nil {
		return fmt.Errorf("failed to init tracing: %w", s.tracingErr)
	}
	if t := s.config.Tracing; t.Enabled {
		if err := tracing.Init(t.ServiceName, t.ServiceVersion, t.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.logger == nil {
		logger, err := newLogger(s.output, s.config.Log)
		if err != nil {
			return err
		}
		s.logger = logger
	}
	observers := append([]worker.Observer{worker.NewLoggingObserver(s.logger), s.metrics}, s.observers...)
	s.pool = pool.New(
		pool.WithConfig(s.config.Pool),
		pool.WithLogger(s.logger),
		pool.WithWorkerOptions(worker.WithObserver(worker.NewCompositeObserver(observers...))),
	)
	return nil
}

// newLogger builds the default structured logger for the configured level and format.
func newLogger(w io.Writer, config LogConfig) (*slog.Logger, error) {
	level, err := config.level()
	if err != nil {
		return nil, err
	}
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(config.Format, "text") {
		return slog.New(slog.NewTextHandler(w, options)), nil
	}
	return slog.New(slog.NewJSONHandler(w, options)), nil
}

// NewTask creates an unbound task started on the service pool.
func (s *Service) NewTask(ctx context.Context, runner Runner, opts ...TaskOption) *Task {
	return NewTask(ctx, s.pool, runner, opts...)
}

// Go creates a task and starts it on the service pool.
func (s *Service) Go(ctx context.Context, runner Runner, opts ...TaskOption) (*Task, error) {
	return Go(ctx, s.pool, runner, opts...)
}

// Run runs the pool eviction loop until ctx is done or the service is shut down.
func (s *Service) Run(ctx context.Context) error {
	return s.pool.Run(ctx)
}

// Shutdown asks every worker to stop and waits for running tasks to finish until ctx is done.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}

// Pool returns the underlying pool manager.
func (s *Service) Pool() *pool.Manager {
	return s.pool
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Metrics returns counters collected across all workers of the service.
func (s *Service) Metrics() worker.MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger {
	return s.logger
}
