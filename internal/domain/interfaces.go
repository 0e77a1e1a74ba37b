package domain

import (
	"context"
	"time"

	"nateiva/internal/models"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status string) error
	UpdateBookingInterval(ctx context.Context, id string, start, end time.Time) error
	SetBookingReviewGiven(ctx context.Context, id string) error
	ListBookingsByLearner(ctx context.Context, learnerID string) ([]*models.Booking, error)
	ListBookingsByTutor(ctx context.Context, tutorID string) ([]*models.Booking, error)
	ListActiveBookings(ctx context.Context, partyID string) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
}

type AvailabilityRepository interface {
	ReplaceAvailability(ctx context.Context, tutorID string, slots []models.AvailabilitySlot) error
	GetAvailability(ctx context.Context, tutorID string) ([]models.AvailabilitySlot, error)
	AddBlockedDate(ctx context.Context, tutorID, date string) error
	RemoveBlockedDate(ctx context.Context, tutorID, date string) error
	GetBlockedDates(ctx context.Context, tutorID string) ([]string, error)
}

type UserRepository interface {
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type MembershipRepository interface {
	CreateOrganizationWithOwner(ctx context.Context, org *models.Organization, owner *models.Membership) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	GetMembership(ctx context.Context, userID, organizationID string) (*models.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*models.Membership, error)
	ListMemberships(ctx context.Context) ([]*models.Membership, error)
	CreateMembershipRequest(ctx context.Context, req *models.MembershipRequest) error
	GetMembershipRequest(ctx context.Context, id string) (*models.MembershipRequest, error)
	GetPendingRequest(ctx context.Context, userID, organizationID string) (*models.MembershipRequest, error)
	ListPendingRequests(ctx context.Context, organizationID string) ([]*models.MembershipRequest, error)
	ListMembershipRequests(ctx context.Context) ([]*models.MembershipRequest, error)
	PromoteRequest(ctx context.Context, requestID string) error
	RejectRequest(ctx context.Context, requestID string) error
}

// Repository is the full storage surface; sqlite implements it for
// production, the in-memory repository for tests.
type Repository interface {
	BookingRepository
	AvailabilityRepository
	UserRepository
	MembershipRepository
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ConfirmScheduler models the simulated payment: a delayed, cancellable
// pending->confirmed transition keyed by booking id.
type ConfirmScheduler interface {
	Schedule(bookingID string, delay time.Duration)
	Cancel(bookingID string) bool
}

type AvailabilityService interface {
	SetWeeklyAvailability(ctx context.Context, tutorID string, slots []models.AvailabilitySlot) error
	WeeklyAvailability(ctx context.Context, tutorID string) ([]models.AvailabilitySlot, error)
	AddBlockedDate(ctx context.Context, tutorID, date string) error
	RemoveBlockedDate(ctx context.Context, tutorID, date string) error
	BlockedDates(ctx context.Context, tutorID string) ([]string, error)
	SlotsForDate(ctx context.Context, tutorID string, date time.Time) ([]models.TimeSlot, error)
}

type BookingService interface {
	Create(ctx context.Context, payload *models.Booking) (*models.Booking, error)
	Confirm(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	MarkNoShow(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, newStart, newEnd time.Time) error
	SetReviewGiven(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	ListForLearner(ctx context.Context, learnerID string) ([]*models.Booking, error)
	ListForTutor(ctx context.Context, tutorID string) ([]*models.Booking, error)
	DailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
}

type MembershipService interface {
	CreateOrganization(ctx context.Context, ownerID string, attrs models.Organization) (*models.Organization, error)
	RequestMembership(ctx context.Context, userID, organizationID string, role models.MembershipRole) (*models.MembershipRequest, error)
	AcceptRequest(ctx context.Context, requestID string) error
	RejectRequest(ctx context.Context, requestID string) error
	MembershipRole(ctx context.Context, userID, organizationID string) (models.MembershipRole, bool, error)
	Organization(ctx context.Context, id string) (*models.Organization, error)
	OrganizationsForUser(ctx context.Context, userID string) ([]*models.Organization, error)
	PendingRequests(ctx context.Context, organizationID string) ([]*models.MembershipRequest, error)
	HasPendingRequest(ctx context.Context, userID, organizationID string) (bool, error)
}

type UserService interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListTutors(ctx context.Context, filter models.TutorFilter) ([]*models.User, error)
	SetCurrentUser(ctx context.Context, id string) error
	CurrentUser(ctx context.Context) (*models.User, error)
}
