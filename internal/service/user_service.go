package service

import (
	"context"

	"nateiva/internal/domain"
	"nateiva/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo        domain.Repository
	snapshotter *Snapshotter
	logger      *zerolog.Logger
}

func NewUserService(repo domain.Repository, snapshotter *Snapshotter, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:        repo,
		snapshotter: snapshotter,
		logger:      logger,
	}
}

// SaveUser upserts a user profile.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == "" || user.Name == "" {
		return domain.Validationf("user id and name are required")
	}
	if !user.Role.Valid() {
		return domain.Validationf("unknown role %q", user.Role)
	}

	if err := s.repo.CreateOrUpdateUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user saved")
	s.writeSnapshot(ctx)
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListTutors returns the tutors matching the filter, in directory order.
// Center owners appear too since they also teach.
func (s *UserService) ListTutors(ctx context.Context, filter models.TutorFilter) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var tutors []*models.User
	for _, u := range users {
		if filter.Matches(u) {
			tutors = append(tutors, u)
		}
	}
	return tutors, nil
}

// SetCurrentUser selects the session user reflected in the snapshot.
func (s *UserService) SetCurrentUser(ctx context.Context, id string) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return err
	}
	s.snapshotter.SetCurrentUserID(id)
	s.writeSnapshot(ctx)
	return nil
}

// CurrentUser resolves the selected session user. Returns nil without error
// when no user has been selected yet.
func (s *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	id := s.snapshotter.CurrentUserID()
	if id == "" {
		return nil, nil
	}
	return s.repo.GetUser(ctx, id)
}

func (s *UserService) writeSnapshot(ctx context.Context) {
	if err := s.snapshotter.Write(ctx); err != nil {
		s.logger.Error().Err(err).Msg("snapshot write after user change failed")
	}
}
