package store

import (
	"sync"
)

// Memory is a generic in-memory keyed registry. It keeps entities of type *T
// mapped by a comparable key K obtained from the supplied keySelector.
//
// The pool keeps its workers here so that selection, eviction and shutdown
// all walk the same snapshot semantics.
type Memory[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
}

// NewMemory creates a new Memory store.
func NewMemory[K comparable, T any](keySelector func(*T) K) *Memory[K, T] {
	return &Memory[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// Put stores or overwrites a record.
func (s *Memory[K, T]) Put(v *T) {
	if v == nil {
		return
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
}

// Delete removes a record and reports whether it was present.
func (s *Memory[K, T]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok
}

// Len returns number of stored records.
func (s *Memory[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// List returns a point-in-time copy of all stored records.
func (s *Memory[K, T]) List() []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	return out
}
