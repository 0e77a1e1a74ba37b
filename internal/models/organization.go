package models

import "time"

// Organization is a tutoring center owned by a center_owner user.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Country     string    `json:"country,omitempty"`
	Languages   []string  `json:"languages,omitempty"`
	OwnerID     string    `json:"owner_id"`
	TutorIDs    []string  `json:"tutor_ids"`
	LearnerIDs  []string  `json:"learner_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Membership binds a user to exactly one role inside an organization.
type Membership struct {
	UserID         string         `json:"user_id"`
	OrganizationID string         `json:"organization_id"`
	Role           MembershipRole `json:"role"`
}

// MembershipRequest is a pending ask to join an organization. It is deleted
// exactly when the matching Membership is created.
type MembershipRequest struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	OrganizationID string         `json:"organization_id"`
	Role           MembershipRole `json:"role"`
	Status         string         `json:"status"` // pending, approved, rejected
	CreatedAt      time.Time      `json:"created_at"`
}
