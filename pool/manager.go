// Package pool hands jobs to reusable workers. It never queues: a job either lands on an idle
// worker, on a freshly spawned one, or Start fails with ErrPoolExhausted and the caller decides
// whether to retry.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/viant/handoff/ambient"
	"github.com/viant/handoff/internal/store"
	"github.com/viant/handoff/worker"
)

var (
	// ErrPoolExhausted is returned by Start when every worker is busy and MaxWorkers is reached.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrClosed is returned by Start after Shutdown.
	ErrClosed = errors.New("pool closed")
)

// Stats is a point-in-time view of the pool.
type Stats struct {
	Total int `json:"total"`
	Busy  int `json:"busy"`
	Idle  int `json:"idle"`
}

// Manager owns a set of workers and binds jobs to them.
type Manager struct {
	config        Config
	ctx           context.Context
	logger        *slog.Logger
	workerOptions []worker.Option
	workers       *store.Memory[string, worker.Worker]

	mu         sync.Mutex
	seq        int
	closed     bool
	shutdownCh chan struct{}
}

// New creates a pool manager.
func New(options ...Option) *Manager {
	m := &Manager{
		config:     DefaultConfig(),
		ctx:        context.Background(),
		logger:     slog.Default(),
		workers:    store.NewMemory[string, worker.Worker](func(w *worker.Worker) string { return w.ID() }),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Start binds job to a worker. The ambient state of ctx is captured on the calling goroutine.
// Idle workers are tried most recently used first; when none accepts, a new worker is spawned
// unless MaxWorkers is reached.
func (m *Manager) Start(ctx context.Context, job worker.Job, name string) (*worker.Worker, error) {
	if job == nil {
		return nil, fmt.Errorf("job was nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	snap := ambient.Capture(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	for _, w := range m.idle() {
		if w.NewWork(job, snap) {
			return w, nil
		}
	}
	if m.config.MaxWorkers > 0 && m.workers.Len() >= m.config.MaxWorkers {
		return nil, fmt.Errorf("%w: %d workers busy, cannot start %q", ErrPoolExhausted, m.workers.Len(), name)
	}
	w := m.spawn()
	if !w.NewWork(job, snap) {
		w.StopRunning()
		m.workers.Delete(w.ID())
		return nil, fmt.Errorf("new worker %v rejected %q", w.ID(), name)
	}
	return w, nil
}

// idle returns running, idle workers ordered by ascending idle time. Caller holds m.mu.
func (m *Manager) idle() []*worker.Worker {
	var ret []*worker.Worker
	idleFor := map[string]time.Duration{}
	for _, w := range m.workers.List() {
		if w.IsWorking() || !w.IsRunning() {
			continue
		}
		idleFor[w.ID()] = w.IdleFor()
		ret = append(ret, w)
	}
	sort.Slice(ret, func(i, j int) bool { return idleFor[ret[i].ID()] < idleFor[ret[j].ID()] })
	return ret
}

// spawn creates and starts a worker. Caller holds m.mu.
func (m *Manager) spawn() *worker.Worker {
	m.seq++
	name := fmt.Sprintf("%s-%d", m.config.NamePrefix, m.seq)
	opts := append([]worker.Option{worker.WithLogger(m.logger)}, m.workerOptions...)
	w := worker.New(m.ctx, name, opts...)
	w.Start()
	m.workers.Put(w)
	m.logger.Debug("worker spawned", "worker", name, "worker_id", w.ID(), "workers", m.workers.Len())
	return w
}

// Evict retires workers idle for at least IdleTimeout and forgets workers stopped elsewhere. It
// returns the number of retired workers.
func (m *Manager) Evict() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for _, w := range m.workers.List() {
		if !w.IsRunning() {
			m.workers.Delete(w.ID())
			continue
		}
		if m.config.IdleTimeout <= 0 || w.IsWorking() || w.IdleFor() < m.config.IdleTimeout {
			continue
		}
		// a worker that got busy in between still retires once its task completes
		w.StopRunning()
		m.workers.Delete(w.ID())
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug("workers evicted", "evicted", evicted, "workers", m.workers.Len())
	}
	return evicted
}

// Run calls Evict every EvictionInterval until ctx is done or the pool is shut down.
func (m *Manager) Run(ctx context.Context) error {
	if m.config.IdleTimeout <= 0 || m.config.EvictionInterval <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.shutdownCh:
			return nil
		}
	}
	ticker := time.NewTicker(m.config.EvictionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.shutdownCh:
			return nil
		case <-ticker.C:
			m.Evict()
		}
	}
}

// Shutdown stops accepting jobs and asks every worker to stop. Busy workers finish their current
// task first; Shutdown waits for all of them until ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.shutdownCh)
	}
	m.mu.Unlock()

	workers := m.workers.List()
	for _, w := range workers {
		w.StopRunning()
	}
	for _, w := range workers {
		select {
		case <-w.Done():
			m.workers.Delete(w.ID())
		case <-ctx.Done():
			return fmt.Errorf("failed to stop %d workers: %w", m.workers.Len(), ctx.Err())
		}
	}
	m.logger.Debug("pool stopped")
	return nil
}

// Workers returns a point-in-time list of live workers.
func (m *Manager) Workers() []*worker.Worker {
	return m.workers.List()
}

// Stats returns worker counts.
func (m *Manager) Stats() Stats {
	ret := Stats{}
	for _, w := range m.workers.List() {
		ret.Total++
		if w.IsWorking() {
			ret.Busy++
		} else {
			ret.Idle++
		}
	}
	return ret
}
