package store

import (
	"sort"
	"sync"

	"github.com/mamameal/docgenctl/kernel/model"
)

// MemoryStore is the in-process MetadataStore. Nothing is persisted.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[model.Group]*model.Snapshot
}

// NewMemoryStore seeds every given group with a NotLoaded snapshot.
func NewMemoryStore(groups ...model.Group) *MemoryStore {
	s := &MemoryStore{snapshots: make(map[model.Group]*model.Snapshot)}
	for _, g := range groups {
		s.snapshots[g] = model.NewSnapshot(g)
	}
	return s
}

func (s *MemoryStore) Snapshot(group model.Group) *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[group]
	if !ok {
		return model.NewSnapshot(group)
	}
	// Return a copy to prevent concurrent modification
	return snapshot.Clone()
}

func (s *MemoryStore) Replace(snapshot *model.Snapshot) {
	owned := snapshot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[owned.Group] = owned
}

func (s *MemoryStore) Update(group model.Group, fn func(current *model.Snapshot) *model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.snapshots[group]
	if !ok {
		current = model.NewSnapshot(group)
	}
	next := fn(current.Clone())
	if next == nil {
		return
	}
	owned := next.Clone()
	owned.Group = group
	s.snapshots[group] = owned
}

func (s *MemoryStore) Groups() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]model.Group, 0, len(s.snapshots))
	for g := range s.snapshots {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}
