package repository

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/okian/tiewatch/internal/domain/model"
)

// snapshot is an immutable, ordered view of the store. Readers load it
// without taking the write lock.
type snapshot struct {
	ordered []model.Analysis
	index   map[model.GroupID]int
	tally   map[model.Classification]int
}

// MemoryStore is an in-memory Store. Writes rebuild the snapshot under a
// mutex; reads only touch the published snapshot.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[model.GroupID]model.Analysis

	snap atomic.Pointer[snapshot]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{byID: make(map[model.GroupID]model.Analysis)}
	s.publish()
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, a model.Analysis) error {
	if a.Group == "" {
		return ErrInvalidAnalysis
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.Group] = a
	s.publish()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id model.GroupID) (model.Analysis, error) {
	snap := s.snap.Load()
	i, ok := snap.index[id]
	if !ok {
		return model.Analysis{}, ErrNotFound
	}
	return snap.ordered[i], nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) []model.Analysis {
	return slices.Clone(s.snap.Load().ordered)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snap.Load().ordered)
}

// Tally implements Store.
func (s *MemoryStore) Tally(_ context.Context) map[model.Classification]int {
	src := s.snap.Load().tally
	out := make(map[model.Classification]int, len(src))
	for c, n := range src {
		out[c] = n
	}
	return out
}

// publish must be called with s.mu held.
func (s *MemoryStore) publish() {
	next := &snapshot{
		ordered: make([]model.Analysis, 0, len(s.byID)),
		index:   make(map[model.GroupID]int, len(s.byID)),
		tally:   make(map[model.Classification]int, 3),
	}
	for _, a := range s.byID {
		next.ordered = append(next.ordered, a)
		next.tally[a.Classification]++
	}
	slices.SortFunc(next.ordered, func(x, y model.Analysis) int {
		return model.CompareGroupIDs(x.Group, y.Group)
	})
	for i, a := range next.ordered {
		next.index[a.Group] = i
	}
	s.snap.Store(next)
}
