package service

import (
	"context"
	"errors"
	"sync"

	"nateiva/internal/domain"
	"nateiva/internal/models"
	"nateiva/internal/snapshot"

	"github.com/rs/zerolog"
)

// Snapshotter assembles the durable snapshot from the repository and writes
// it through the configured store. User and membership services share one
// instance and call Write after every mutation, so the stored view always
// matches the repository.
type Snapshotter struct {
	repo   domain.Repository
	store  snapshot.Store
	logger *zerolog.Logger

	mu            sync.Mutex
	currentUserID string
}

func NewSnapshotter(repo domain.Repository, store snapshot.Store, logger *zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// SetCurrentUserID records the selected session user for the next Write.
func (s *Snapshotter) SetCurrentUserID(id string) {
	s.mu.Lock()
	s.currentUserID = id
	s.mu.Unlock()
}

// CurrentUserID returns the selected session user, empty when none.
func (s *Snapshotter) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUserID
}

// Restore reloads the session user from the last stored snapshot. The entity
// collections themselves live in the repository and need no replay.
func (s *Snapshotter) Restore(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap.CurrentUser != nil {
		s.SetCurrentUserID(snap.CurrentUser.ID)
	} else {
		s.SetCurrentUserID("")
	}
	return nil
}

// Write collects all entity collections and persists them as one snapshot.
func (s *Snapshotter) Write(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	orgs, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		return err
	}
	memberships, err := s.repo.ListMemberships(ctx)
	if err != nil {
		return err
	}
	requests, err := s.repo.ListMembershipRequests(ctx)
	if err != nil {
		return err
	}

	// the stored currentUser is the full record; absent when no session
	var current *models.User
	if id := s.CurrentUserID(); id != "" {
		u, err := s.repo.GetUser(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		current = u
	}

	snap := &snapshot.Snapshot{
		Users:              users,
		CurrentUser:        current,
		Organizations:      orgs,
		Memberships:        memberships,
		MembershipRequests: requests,
	}

	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Error().Err(err).Msg("snapshot write failed")
		return err
	}
	return nil
}
