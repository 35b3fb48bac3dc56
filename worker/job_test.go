package worker_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/handoff/worker"
)

// testJob is a configurable Job recording the calls the worker makes.
type testJob struct {
	name    string
	run     func(ctx context.Context) error
	onError func(ctx context.Context, err error)

	mu       sync.Mutex
	errs     []error
	runs     atomic.Int32
	bound    atomic.Int32
	released chan struct{}
	once     sync.Once
}

func newJob(name string, run func(ctx context.Context) error) *testJob {
	return &testJob{name: name, run: run, released: make(chan struct{})}
}

func (j *testJob) DisplayName() string { return j.name }

func (j *testJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.run == nil {
		return nil
	}
	return j.run(ctx)
}

func (j *testJob) OnError(ctx context.Context, err error) {
	j.mu.Lock()
	j.errs = append(j.errs, err)
	j.mu.Unlock()
	if j.onError != nil {
		j.onError(ctx, err)
	}
}

func (j *testJob) Bound(w *worker.Worker) { j.bound.Add(1) }

func (j *testJob) Released(w *worker.Worker) {
	j.once.Do(func() { close(j.released) })
}

func (j *testJob) errors() []error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]error(nil), j.errs...)
}
