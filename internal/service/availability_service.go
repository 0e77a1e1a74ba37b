package service

import (
	"context"
	"time"

	"nateiva/internal/domain"
	"nateiva/internal/metrics"
	"nateiva/internal/models"
	"nateiva/internal/schedule"

	"github.com/rs/zerolog"
)

type AvailabilityService struct {
	repo   domain.Repository
	logger *zerolog.Logger

	now func() time.Time
}

func NewAvailabilityService(repo domain.Repository, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetWeeklyAvailability replaces the tutor's whole weekly template. Each
// slot is validated before anything is written.
func (s *AvailabilityService) SetWeeklyAvailability(ctx context.Context, tutorID string, slots []models.AvailabilitySlot) error {
	if tutorID == "" {
		return domain.Validationf("tutor id is required")
	}
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return domain.Validationf("%v", err)
		}
	}
	if err := s.repo.ReplaceAvailability(ctx, tutorID, slots); err != nil {
		return err
	}
	s.logger.Info().Str("tutor_id", tutorID).Int("slots", len(slots)).Msg("weekly availability updated")
	return nil
}

func (s *AvailabilityService) WeeklyAvailability(ctx context.Context, tutorID string) ([]models.AvailabilitySlot, error) {
	return s.repo.GetAvailability(ctx, tutorID)
}

// AddBlockedDate takes a calendar date out of the tutor's bookable days.
// Adding the same date twice is a no-op.
func (s *AvailabilityService) AddBlockedDate(ctx context.Context, tutorID, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repo.AddBlockedDate(ctx, tutorID, date)
}

func (s *AvailabilityService) RemoveBlockedDate(ctx context.Context, tutorID, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repo.RemoveBlockedDate(ctx, tutorID, date)
}

func (s *AvailabilityService) BlockedDates(ctx context.Context, tutorID string) ([]string, error) {
	return s.repo.GetBlockedDates(ctx, tutorID)
}

// SlotsForDate generates the bookable slots for a tutor on a calendar date.
// Blocked or past dates yield an empty result rather than an error.
func (s *AvailabilityService) SlotsForDate(ctx context.Context, tutorID string, date time.Time) ([]models.TimeSlot, error) {
	slots, err := s.repo.GetAvailability(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.repo.GetBlockedDates(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	generated := schedule.GenerateSlots(slots, blocked, date, s.now())
	metrics.AddSlotsGenerated(len(generated))
	return generated, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return domain.Validationf("date %q is not in %s form", date, models.DateLayout)
	}
	return nil
}
