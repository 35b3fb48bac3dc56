package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/handoff/ambient"
	"github.com/viant/handoff/tracing"
	"github.com/viant/handoff/worker"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type captureEntry struct {
	message string
	level   slog.Level
	attrs   map[string]string
}

// captureHandler is a slog.Handler recording messages with their attributes.
type captureHandler struct {
	mu      sync.Mutex
	entries []captureEntry
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	h.mu.Lock()
	h.entries = append(h.entries, captureEntry{message: r.Message, level: r.Level, attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) find(message string) []captureEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []captureEntry
	for _, e := range h.entries {
		if e.message == message {
			out = append(out, e)
		}
	}
	return out
}

func TestLoggingObserver(t *testing.T) {
	handler := &captureHandler{}
	w := worker.New(context.Background(), "logged", worker.WithLogger(slog.New(handler)))
	w.Start()

	j := newJob("failing", func(ctx context.Context) error { return errors.New("x") })
	j.onError = func(ctx context.Context, err error) { panic("hook") }
	require.True(t, w.NewWork(j, ambient.Snapshot{}))
	waitReleased(t, j)
	require.Eventually(t, w.StopRunning, waitFor, tick)
	<-w.Done()

	entered := handler.find("task_entered")
	require.Len(t, entered, 1)
	assert.Equal(t, slog.LevelDebug, entered[0].level)
	assert.Equal(t, "failing", entered[0].attrs["task"])
	assert.Equal(t, "logged", entered[0].attrs["worker"])

	failed := handler.find("task_error")
	require.Len(t, failed, 1)
	assert.Equal(t, slog.LevelInfo, failed[0].level)
	assert.Equal(t, "x", failed[0].attrs["error"])

	hook := handler.find("task_error_hook_failed")
	require.Len(t, hook, 1)
	assert.Equal(t, slog.LevelWarn, hook[0].level)

	left := handler.find("task_left")
	require.Len(t, left, 1)
	assert.Equal(t, "true", left[0].attrs["failed"])
	assert.Len(t, handler.find("worker_stopped"), 1)
}

func TestLoggingObserver_TraceIDs(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	handler := &captureHandler{}
	w := startWorker(t, worker.WithObserver(worker.NewLoggingObserver(slog.New(handler))))

	callerCtx, callerSpan := tracing.StartSpan(context.Background(), "assign", "")
	snap := ambient.Capture(callerCtx)
	tracing.EndSpan(callerSpan, nil)

	j := newJob("traced", nil)
	require.True(t, w.NewWork(j, snap))
	waitReleased(t, j)

	entered := handler.find("task_entered")
	require.Len(t, entered, 1)
	assert.Equal(t, snap.Span().TraceID().String(), entered[0].attrs["trace_id"])
	assert.NotEmpty(t, entered[0].attrs["span_id"])
	assert.NotEqual(t, snap.Span().SpanID().String(), entered[0].attrs["span_id"])
}

func TestCompositeObserver(t *testing.T) {
	assert.Equal(t, worker.NoopObserver{}, worker.NewCompositeObserver(nil))
	single := &worker.Metrics{}
	assert.Same(t, single, worker.NewCompositeObserver(nil, single))

	first, second := &worker.Metrics{}, &worker.Metrics{}
	w := worker.New(context.Background(), "composite", worker.WithObserver(worker.NewCompositeObserver(first, second)))
	w.Start()
	j := newJob("slow", func(ctx context.Context) error {
		time.Sleep(time.Millisecond)
		return nil
	})
	require.True(t, w.NewWork(j, ambient.Snapshot{}))
	waitReleased(t, j)
	require.Eventually(t, w.StopRunning, waitFor, tick)
	<-w.Done()

	for _, m := range []*worker.Metrics{first, second} {
		s := m.Snapshot()
		assert.EqualValues(t, 1, s.WorkersStarted)
		assert.EqualValues(t, 1, s.WorkersStopped)
		assert.EqualValues(t, 1, s.TasksCompleted)
		assert.EqualValues(t, 0, s.InFlight)
		assert.True(t, s.AvgDuration >= time.Millisecond)
	}
}
