package handoff

import (
	"log/slog"

	"github.com/viant/handoff/tracing"
	"github.com/viant/handoff/worker"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger used by the service, its pool and workers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver adds worker lifecycle observers next to the logging observer.
func WithObserver(observers ...worker.Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, observers...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the stdout
// exporter is used; otherwise traces are written to the supplied file path. The first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom SpanExporter, for example
// OTLP or an in-memory exporter in tests.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
