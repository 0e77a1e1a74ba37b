package service

import (
	"context"
	"sync"
	"time"

	"nateiva/internal/config"
	"nateiva/internal/domain"
	"nateiva/internal/events"
	"nateiva/internal/metrics"
	"nateiva/internal/models"
	"nateiva/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// allowedTransitions is the booking state machine. Terminal statuses have
// no entry, so any transition out of them is rejected.
var allowedTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
}

type BookingService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	scheduler domain.ConfirmScheduler
	cfg       config.BookingConfig
	logger    *zerolog.Logger

	// mu serializes check-then-write sequences so two overlapping bookings
	// cannot both pass the conflict check.
	mu sync.Mutex

	now func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, scheduler domain.ConfirmScheduler, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if cfg.MaxAdvanceDays <= 0 {
		cfg.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	return &BookingService{
		repo:      repo,
		eventBus:  eventBus,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the payload, checks the learner's schedule (and the
// tutor's, when configured) for overlap and stores the booking as pending.
// A zero price is filled in from the tutor's hourly rate.
// The simulated payment is scheduled to confirm it after the configured
// delay unless a cancel lands first.
func (s *BookingService) Create(ctx context.Context, payload *models.Booking) (*models.Booking, error) {
	if err := s.validateParties(payload); err != nil {
		return nil, err
	}
	if err := s.validateInterval(payload.StartTime, payload.EndTime); err != nil {
		return nil, err
	}

	tutor, err := s.repo.GetUser(ctx, payload.TutorID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConflicts(ctx, payload.LearnerID, payload.TutorID, payload.StartTime, payload.EndTime, ""); err != nil {
		return nil, err
	}

	booking := *payload
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.Status = models.StatusPending
	if booking.Price == 0 {
		booking.Price = tutor.PricePerHour
	}

	if err := s.repo.CreateBooking(ctx, &booking); err != nil {
		return nil, err
	}

	metrics.IncTransition(models.StatusPending)
	s.publishEvent(events.EventBookingCreated, &booking)
	s.logger.Info().Str("booking_id", booking.ID).Str("learner_id", booking.LearnerID).
		Str("tutor_id", booking.TutorID).Time("start", booking.StartTime).Msg("booking created")

	if s.scheduler != nil {
		s.scheduler.Schedule(booking.ID, s.cfg.ConfirmDelay)
	}
	return &booking, nil
}

// Confirm moves a pending booking to confirmed. Called by the payment
// worker when the simulated payment settles.
func (s *BookingService) Confirm(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.StatusConfirmed, events.EventBookingConfirmed)
}

// Cancel aborts an active booking. Cancelling a pending booking also
// withdraws the scheduled confirmation, so the cancel wins the race.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	if s.scheduler != nil {
		s.scheduler.Cancel(id)
	}
	return s.transition(ctx, id, models.StatusCancelled, events.EventBookingCancelled)
}

// Complete marks a confirmed booking as held.
func (s *BookingService) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.StatusCompleted, events.EventBookingCompleted)
}

// MarkNoShow records that the learner did not appear for a confirmed booking.
func (s *BookingService) MarkNoShow(ctx context.Context, id string) error {
	return s.transition(ctx, id, models.StatusNoShow, "")
}

// Reschedule moves an active booking to a new interval. The booking's own
// interval is excluded from the conflict check so it never collides with
// itself.
func (s *BookingService) Reschedule(ctx context.Context, id string, newStart, newEnd time.Time) error {
	if err := s.validateInterval(newStart, newEnd); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if models.IsTerminalStatus(booking.Status) {
		return domain.Transitionf(booking.Status, booking.Status)
	}

	if err := s.checkConflicts(ctx, booking.LearnerID, booking.TutorID, newStart, newEnd, id); err != nil {
		return err
	}

	if err := s.repo.UpdateBookingInterval(ctx, id, newStart, newEnd); err != nil {
		return err
	}

	booking.StartTime = newStart
	booking.EndTime = newEnd
	s.publishEvent(events.EventBookingRescheduled, booking)
	s.logger.Info().Str("booking_id", id).Time("start", newStart).Msg("booking rescheduled")
	return nil
}

// SetReviewGiven flags a completed booking as reviewed. Reviews on bookings
// in any other status are rejected.
func (s *BookingService) SetReviewGiven(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusCompleted {
		return domain.Validationf("booking %s is %s, only completed bookings take reviews", id, booking.Status)
	}
	return s.repo.SetBookingReviewGiven(ctx, id)
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) ListForLearner(ctx context.Context, learnerID string) ([]*models.Booking, error) {
	return s.repo.ListBookingsByLearner(ctx, learnerID)
}

func (s *BookingService) ListForTutor(ctx context.Context, tutorID string) ([]*models.Booking, error) {
	return s.repo.ListBookingsByTutor(ctx, tutorID)
}

func (s *BookingService) DailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	return s.repo.GetDailyBookings(ctx, start, end)
}

func (s *BookingService) transition(ctx context.Context, id, target, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(booking.Status, target) {
		return domain.Transitionf(booking.Status, target)
	}

	if err := s.repo.UpdateBookingStatus(ctx, id, target); err != nil {
		return err
	}

	metrics.IncTransition(target)
	booking.Status = target
	if eventType != "" {
		s.publishEvent(eventType, booking)
	}
	s.logger.Info().Str("booking_id", id).Str("status", target).Msg("booking status changed")
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *BookingService) validateParties(b *models.Booking) error {
	if b.LearnerID == "" || b.TutorID == "" {
		return domain.Validationf("learner and tutor ids are required")
	}
	if b.LearnerID == b.TutorID {
		return domain.Validationf("learner and tutor must differ")
	}
	if b.Price < 0 {
		return domain.Validationf("price must not be negative")
	}
	return nil
}

func (s *BookingService) validateInterval(start, end time.Time) error {
	now := s.now()
	if !start.Before(end) {
		return domain.Validationf("booking start must precede end")
	}
	if !start.After(now) {
		return domain.Validationf("booking start must be in the future")
	}
	if start.After(now.AddDate(0, 0, s.cfg.MaxAdvanceDays)) {
		return domain.Validationf("booking start exceeds the %d day horizon", s.cfg.MaxAdvanceDays)
	}
	return nil
}

// checkConflicts guards the learner's schedule, and the tutor's when
// GuardTutorSchedule is set. Conflicts count toward the conflict metric.
func (s *BookingService) checkConflicts(ctx context.Context, learnerID, tutorID string, start, end time.Time, excludeID string) error {
	now := s.now()

	parties := []string{learnerID}
	if s.cfg.GuardTutorSchedule {
		parties = append(parties, tutorID)
	}

	for _, party := range parties {
		existing, err := s.repo.ListActiveBookings(ctx, party)
		if err != nil {
			return err
		}
		if c := schedule.FindConflict(existing, start, end, excludeID, now); c.HasConflict {
			metrics.IncConflict()
			return &domain.ConflictError{Booking: c.Booking}
		}
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		LearnerID: booking.LearnerID,
		TutorID:   booking.TutorID,
		Subject:   booking.Subject,
		Status:    booking.Status,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Price:     booking.Price,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
