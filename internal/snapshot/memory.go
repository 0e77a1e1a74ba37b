package snapshot

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. It round-trips through
// JSON so callers never share pointers with the stored copy.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	raw := s.data
	s.mu.RUnlock()

	if raw == nil {
		return &Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
