package domain

import (
	"errors"
	"fmt"

	"nateiva/internal/models"
)

// Error kinds returned across the engine boundary. The presentation layer
// matches them with errors.Is / errors.As and renders localized messages;
// nothing here is meant to be shown to end users verbatim.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDuplicateRequest    = errors.New("membership request already pending")
	ErrDuplicateMembership = errors.New("already a member of this organization")
)

// ConflictError reports a temporal overlap with an existing active booking.
type ConflictError struct {
	Booking *models.Booking
}

func (e *ConflictError) Error() string {
	if e.Booking == nil {
		return "booking conflict"
	}
	return fmt.Sprintf("booking conflict with %s [%s, %s)",
		e.Booking.ID,
		e.Booking.StartTime.Format("2006-01-02 15:04"),
		e.Booking.EndTime.Format("15:04"))
}

// Validationf wraps ErrValidation with a detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Transitionf wraps ErrInvalidTransition with the attempted change.
func Transitionf(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
