package models

import "time"

type Booking struct {
	ID          string    `json:"id"`
	LearnerID   string    `json:"learner_id"`
	TutorID     string    `json:"tutor_id"`
	Subject     string    `json:"subject"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"` // pending, confirmed, completed, cancelled, no_show
	Price       float64   `json:"price"`
	ReviewGiven bool      `json:"review_given"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive reports whether the booking occupies its interval on a schedule.
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// Overlaps checks the half-open intervals [b.StartTime, b.EndTime) and
// [start, end). Touching endpoints never overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}
