package service

import (
	"context"
	"errors"
	"sync"

	"nateiva/internal/domain"
	"nateiva/internal/events"
	"nateiva/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MembershipService struct {
	repo        domain.Repository
	eventBus    domain.EventPublisher
	snapshotter *Snapshotter
	logger      *zerolog.Logger

	// mu serializes the duplicate checks against the writes that follow.
	mu sync.Mutex
}

func NewMembershipService(repo domain.Repository, eventBus domain.EventPublisher, snapshotter *Snapshotter, logger *zerolog.Logger) *MembershipService {
	return &MembershipService{
		repo:        repo,
		eventBus:    eventBus,
		snapshotter: snapshotter,
		logger:      logger,
	}
}

// CreateOrganization registers a tutoring center together with its owner
// membership. The two writes are atomic at the repository level; the owner
// is never left without a membership row.
func (s *MembershipService) CreateOrganization(ctx context.Context, ownerID string, attrs models.Organization) (*models.Organization, error) {
	if attrs.Name == "" {
		return nil, domain.Validationf("organization name is required")
	}

	owner, err := s.repo.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !owner.Role.Capabilities().CanManageOrganization {
		return nil, domain.Validationf("user %s cannot own an organization", ownerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	org := attrs
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	org.OwnerID = ownerID

	membership := &models.Membership{
		UserID:         ownerID,
		OrganizationID: org.ID,
		Role:           models.MemberOwner,
	}

	if err := s.repo.CreateOrganizationWithOwner(ctx, &org, membership); err != nil {
		return nil, err
	}

	s.logger.Info().Str("organization_id", org.ID).Str("owner_id", ownerID).Msg("organization created")
	s.writeSnapshot(ctx)
	return &org, nil
}

// RequestMembership files a pending join request. Existing members and
// users with a request already pending are rejected.
func (s *MembershipService) RequestMembership(ctx context.Context, userID, organizationID string, role models.MembershipRole) (*models.MembershipRequest, error) {
	if !role.Valid() || role == models.MemberOwner {
		return nil, domain.Validationf("role %q cannot be requested", role)
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetMembership(ctx, userID, organizationID); err == nil {
		return nil, domain.ErrDuplicateMembership
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if _, err := s.repo.GetPendingRequest(ctx, userID, organizationID); err == nil {
		return nil, domain.ErrDuplicateRequest
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	req := &models.MembershipRequest{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		Status:         models.RequestPending,
	}
	if err := s.repo.CreateMembershipRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Str("request_id", req.ID).Str("user_id", userID).
		Str("organization_id", organizationID).Msg("membership requested")
	s.writeSnapshot(ctx)
	return req, nil
}

// AcceptRequest promotes a pending request into a membership. The request
// row disappears and the roster grows in the same repository transaction.
func (s *MembershipService) AcceptRequest(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.GetMembershipRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.repo.PromoteRequest(ctx, requestID); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := events.MembershipEventPayload{
			UserID:         req.UserID,
			OrganizationID: req.OrganizationID,
			Role:           string(req.Role),
		}
		if err := s.eventBus.PublishJSON(events.EventMembershipAccepted, payload); err != nil {
			s.logger.Error().Err(err).Str("request_id", requestID).Msg("publish event error")
		}
	}

	s.logger.Info().Str("request_id", requestID).Str("user_id", req.UserID).Msg("membership request accepted")
	s.writeSnapshot(ctx)
	return nil
}

// RejectRequest marks a pending request rejected. The row is kept so the
// user can see the outcome.
func (s *MembershipService) RejectRequest(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RejectRequest(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info().Str("request_id", requestID).Msg("membership request rejected")
	s.writeSnapshot(ctx)
	return nil
}

// MembershipRole reports the user's role inside the organization; the bool
// is false when no membership exists.
func (s *MembershipService) MembershipRole(ctx context.Context, userID, organizationID string) (models.MembershipRole, bool, error) {
	membership, err := s.repo.GetMembership(ctx, userID, organizationID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return membership.Role, true, nil
}

func (s *MembershipService) Organization(ctx context.Context, id string) (*models.Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}

// OrganizationsForUser lists the organizations the user belongs to, in
// membership order.
func (s *MembershipService) OrganizationsForUser(ctx context.Context, userID string) ([]*models.Organization, error) {
	memberships, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgs := make([]*models.Organization, 0, len(memberships))
	for _, m := range memberships {
		org, err := s.repo.GetOrganization(ctx, m.OrganizationID)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func (s *MembershipService) PendingRequests(ctx context.Context, organizationID string) ([]*models.MembershipRequest, error) {
	return s.repo.ListPendingRequests(ctx, organizationID)
}

func (s *MembershipService) HasPendingRequest(ctx context.Context, userID, organizationID string) (bool, error) {
	_, err := s.repo.GetPendingRequest(ctx, userID, organizationID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MembershipService) writeSnapshot(ctx context.Context) {
	if err := s.snapshotter.Write(ctx); err != nil {
		s.logger.Error().Err(err).Msg("snapshot write after membership change failed")
	}
}
