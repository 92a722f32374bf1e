package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID]Snapshot)}
}

func (s *MemoryStore) Save(ctx context.Context, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.snapshots[snapshot.MatchID]; ok && current.Sequence >= snapshot.Sequence {
		return nil
	}
	snapshot.Data = slices.Clone(snapshot.Data)
	s.snapshots[snapshot.MatchID] = snapshot
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, matchID uuid.UUID) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot.Data = slices.Clone(snapshot.Data)
	return &snapshot, nil
}

func (s *MemoryStore) Delete(ctx context.Context, matchID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, matchID)
	return nil
}
