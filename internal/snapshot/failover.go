package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverStore wraps a primary store with a fallback. After a primary
// failure it serves from the fallback and retries the primary at most once
// a minute.
type FailoverStore struct {
	primary  Store
	fallback Store
	logger   *zerolog.Logger

	isDown atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

const recoveryInterval = time.Minute

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStore) Save(ctx context.Context, snap *Snapshot) error {
	if s.primaryUsable() {
		err := s.primary.Save(ctx, snap)
		if err == nil {
			return nil
		}
		s.markDown(err)
	}
	return s.fallback.Save(ctx, snap)
}

func (s *FailoverStore) Load(ctx context.Context) (*Snapshot, error) {
	if s.primaryUsable() {
		snap, err := s.primary.Load(ctx)
		if err == nil {
			return snap, nil
		}
		s.markDown(err)
	}
	return s.fallback.Load(ctx)
}

func (s *FailoverStore) primaryUsable() bool {
	if !s.isDown.Load() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastCheck) > recoveryInterval {
		s.lastCheck = time.Now()
		s.isDown.Store(false)
		return true
	}
	return false
}

func (s *FailoverStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("primary snapshot store failed, using fallback")
	s.isDown.Store(true)
	s.mu.Lock()
	s.lastCheck = time.Now()
	s.mu.Unlock()
}
