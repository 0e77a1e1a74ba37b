package schedule

import (
	"time"

	"nateiva/internal/models"
)

// Conflict is the result of a schedule check against a party's bookings.
type Conflict struct {
	HasConflict bool
	Booking     *models.Booking
}

// FindConflict scans bookings in their given (registry) order and returns
// the first active future booking whose half-open interval overlaps
// [start, end). Touching endpoints never conflict. excludeID skips the
// booking being rescheduled so it cannot collide with itself.
func FindConflict(bookings []*models.Booking, start, end time.Time, excludeID string, now time.Time) Conflict {
	for _, b := range bookings {
		if b.ID == excludeID {
			continue
		}
		if !b.IsActive() {
			continue
		}
		if !b.StartTime.After(now) {
			continue
		}
		if b.Overlaps(start, end) {
			return Conflict{HasConflict: true, Booking: b}
		}
	}
	return Conflict{}
}
