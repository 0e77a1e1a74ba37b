package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

const (
	// SlotDurationMinutes is the fixed length of a bookable bucket.
	SlotDurationMinutes = 60

	// MinutesPerDay bounds minute offsets in weekly availability.
	MinutesPerDay = 1440

	// DateLayout is the calendar-date format for blocked dates and snapshots.
	DateLayout = "2006-01-02"

	// DefaultConfirmDelaySeconds is the simulated payment delay before a
	// pending booking is confirmed.
	DefaultConfirmDelaySeconds = 2

	// DefaultMaxAdvanceDays is how far ahead a booking may be placed.
	DefaultMaxAdvanceDays = 90
)

// ActiveStatuses are the booking statuses that occupy a party's schedule.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// IsTerminalStatus reports whether no further transition is allowed.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActiveStatus reports whether the booking still occupies its interval.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}
