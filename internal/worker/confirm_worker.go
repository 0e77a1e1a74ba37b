package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"nateiva/internal/domain"

	"github.com/rs/zerolog"
)

// Confirmer is the slice of the booking service the worker needs.
type Confirmer interface {
	Confirm(ctx context.Context, id string) error
}

// ConfirmWorker simulates payment settlement: each scheduled booking is
// confirmed after its delay unless cancelled first. One timer per booking
// id; scheduling the same id again replaces the pending timer.
type ConfirmWorker struct {
	logger *zerolog.Logger

	mu        sync.Mutex
	confirmer Confirmer
	timers    map[string]*time.Timer
}

func NewConfirmWorker(logger *zerolog.Logger) *ConfirmWorker {
	return &ConfirmWorker{
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// SetConfirmer binds the booking service. The worker is constructed before
// the service, which needs the worker as its scheduler.
func (w *ConfirmWorker) SetConfirmer(c Confirmer) {
	w.mu.Lock()
	w.confirmer = c
	w.mu.Unlock()
}

// Schedule arms a confirmation timer for the booking.
func (w *ConfirmWorker) Schedule(bookingID string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.timers[bookingID]; ok {
		old.Stop()
	}
	w.timers[bookingID] = time.AfterFunc(delay, func() {
		w.fire(bookingID)
	})
	w.logger.Debug().Str("booking_id", bookingID).Dur("delay", delay).Msg("confirmation scheduled")
}

// Cancel withdraws a pending confirmation. Returns true when a timer was
// still armed, false when it already fired or never existed.
func (w *ConfirmWorker) Cancel(bookingID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	timer, ok := w.timers[bookingID]
	if !ok {
		return false
	}
	delete(w.timers, bookingID)
	return timer.Stop()
}

// Stop cancels every pending confirmation, for shutdown.
func (w *ConfirmWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
}

func (w *ConfirmWorker) fire(bookingID string) {
	w.mu.Lock()
	delete(w.timers, bookingID)
	confirmer := w.confirmer
	w.mu.Unlock()

	if confirmer == nil {
		w.logger.Error().Str("booking_id", bookingID).Msg("confirmation fired with no confirmer bound")
		return
	}

	err := confirmer.Confirm(context.Background(), bookingID)
	switch {
	case err == nil:
		w.logger.Info().Str("booking_id", bookingID).Msg("booking confirmed after payment delay")
	case errors.Is(err, domain.ErrInvalidTransition):
		// a cancel won the race; nothing to do
		w.logger.Debug().Str("booking_id", bookingID).Msg("confirmation skipped, booking no longer pending")
	default:
		w.logger.Error().Err(err).Str("booking_id", bookingID).Msg("confirmation failed")
	}
}
