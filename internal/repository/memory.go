package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"nateiva/internal/domain"
	"nateiva/internal/models"
)

// Memory is an in-memory domain.Repository. It keeps insertion order for
// every collection, which is what list callers observe as registry order.
// Used in tests and for ephemeral single-process runs.
type Memory struct {
	mu sync.RWMutex

	bookings     []*models.Booking
	users        []*models.User
	availability map[string][]models.AvailabilitySlot
	blockedDates map[string][]string
	orgs         []*models.Organization
	memberships  []*models.Membership
	requests     []*models.MembershipRequest
}

func NewMemory() *Memory {
	return &Memory{
		availability: make(map[string][]models.AvailabilitySlot),
		blockedDates: make(map[string][]string),
	}
}

// --- bookings ---

func (m *Memory) CreateBooking(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	clone := *booking
	m.bookings = append(m.bookings, &clone)
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b := m.findBooking(id)
	if b == nil {
		return nil, domain.NotFoundf("booking %s", id)
	}
	clone := *b
	return &clone, nil
}

func (m *Memory) UpdateBookingStatus(_ context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findBooking(id)
	if b == nil {
		return domain.NotFoundf("booking %s", id)
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) UpdateBookingInterval(_ context.Context, id string, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findBooking(id)
	if b == nil {
		return domain.NotFoundf("booking %s", id)
	}
	b.StartTime = start
	b.EndTime = end
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetBookingReviewGiven(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findBooking(id)
	if b == nil {
		return domain.NotFoundf("booking %s", id)
	}
	b.ReviewGiven = true
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ListBookingsByLearner(_ context.Context, learnerID string) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterBookings(func(b *models.Booking) bool { return b.LearnerID == learnerID }), nil
}

func (m *Memory) ListBookingsByTutor(_ context.Context, tutorID string) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterBookings(func(b *models.Booking) bool { return b.TutorID == tutorID }), nil
}

func (m *Memory) ListActiveBookings(_ context.Context, partyID string) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterBookings(func(b *models.Booking) bool {
		return (b.LearnerID == partyID || b.TutorID == partyID) && b.IsActive()
	}), nil
}

func (m *Memory) GetDailyBookings(_ context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	daily := make(map[string][]*models.Booking)
	for _, b := range m.bookings {
		if b.StartTime.Before(start) || !b.StartTime.Before(end) {
			continue
		}
		clone := *b
		key := b.StartTime.Format(models.DateLayout)
		daily[key] = append(daily[key], &clone)
	}
	// each day reads in chronological order, matching the sqlite repository
	for _, day := range daily {
		sort.SliceStable(day, func(i, j int) bool { return day[i].StartTime.Before(day[j].StartTime) })
	}
	return daily, nil
}

func (m *Memory) findBooking(id string) *models.Booking {
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (m *Memory) filterBookings(keep func(*models.Booking) bool) []*models.Booking {
	var out []*models.Booking
	for _, b := range m.bookings {
		if keep(b) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out
}

// --- availability ---

func (m *Memory) ReplaceAvailability(_ context.Context, tutorID string, slots []models.AvailabilitySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability[tutorID] = append([]models.AvailabilitySlot(nil), slots...)
	return nil
}

func (m *Memory) GetAvailability(_ context.Context, tutorID string) ([]models.AvailabilitySlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AvailabilitySlot(nil), m.availability[tutorID]...), nil
}

func (m *Memory) AddBlockedDate(_ context.Context, tutorID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.blockedDates[tutorID] {
		if d == date {
			return nil
		}
	}
	m.blockedDates[tutorID] = append(m.blockedDates[tutorID], date)
	return nil
}

func (m *Memory) RemoveBlockedDate(_ context.Context, tutorID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dates := m.blockedDates[tutorID]
	for i, d := range dates {
		if d == date {
			m.blockedDates[tutorID] = append(dates[:i], dates[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) GetBlockedDates(_ context.Context, tutorID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.blockedDates[tutorID]...), nil
}

// --- users ---

func (m *Memory) CreateOrUpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i, u := range m.users {
		if u.ID == user.ID {
			clone := *user
			clone.CreatedAt = u.CreatedAt
			clone.UpdatedAt = now
			m.users[i] = &clone
			return nil
		}
	}
	clone := *user
	clone.CreatedAt = now
	clone.UpdatedAt = now
	m.users = append(m.users, &clone)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("user %s", id)
}

func (m *Memory) ListUsers(_ context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

// --- organizations and memberships ---

func (m *Memory) CreateOrganizationWithOwner(_ context.Context, org *models.Organization, owner *models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.memberships {
		if mem.UserID == owner.UserID && mem.OrganizationID == owner.OrganizationID {
			return domain.ErrDuplicateMembership
		}
	}
	org.CreatedAt = time.Now()
	orgClone := *org
	ownerClone := *owner
	m.orgs = append(m.orgs, &orgClone)
	m.memberships = append(m.memberships, &ownerClone)
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org := m.findOrg(id)
	if org == nil {
		return nil, domain.NotFoundf("organization %s", id)
	}
	clone := *org
	return &clone, nil
}

func (m *Memory) ListOrganizations(_ context.Context) ([]*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Organization, 0, len(m.orgs))
	for _, org := range m.orgs {
		clone := *org
		out = append(out, &clone)
	}
	return out, nil
}

func (m *Memory) GetMembership(_ context.Context, userID, organizationID string) (*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mem := range m.memberships {
		if mem.UserID == userID && mem.OrganizationID == organizationID {
			clone := *mem
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("membership of %s in %s", userID, organizationID)
}

func (m *Memory) ListMembershipsByUser(_ context.Context, userID string) ([]*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Membership
	for _, mem := range m.memberships {
		if mem.UserID == userID {
			clone := *mem
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *Memory) ListMemberships(_ context.Context) ([]*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Membership, 0, len(m.memberships))
	for _, mem := range m.memberships {
		clone := *mem
		out = append(out, &clone)
	}
	return out, nil
}

func (m *Memory) CreateMembershipRequest(_ context.Context, req *models.MembershipRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.CreatedAt = time.Now()
	clone := *req
	m.requests = append(m.requests, &clone)
	return nil
}

func (m *Memory) GetMembershipRequest(_ context.Context, id string) (*models.MembershipRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, req := range m.requests {
		if req.ID == id {
			clone := *req
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("membership request %s", id)
}

func (m *Memory) GetPendingRequest(_ context.Context, userID, organizationID string) (*models.MembershipRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, req := range m.requests {
		if req.UserID == userID && req.OrganizationID == organizationID && req.Status == models.RequestPending {
			clone := *req
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("pending request of %s for %s", userID, organizationID)
}

func (m *Memory) ListPendingRequests(_ context.Context, organizationID string) ([]*models.MembershipRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.MembershipRequest
	for _, req := range m.requests {
		if req.OrganizationID == organizationID && req.Status == models.RequestPending {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *Memory) ListMembershipRequests(_ context.Context) ([]*models.MembershipRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.MembershipRequest, 0, len(m.requests))
	for _, req := range m.requests {
		clone := *req
		out = append(out, &clone)
	}
	return out, nil
}

// PromoteRequest creates the membership, extends the organization roster and
// drops the request, all under one lock so no caller sees a partial join.
func (m *Memory) PromoteRequest(_ context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, req := range m.requests {
		if req.ID == requestID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.NotFoundf("membership request %s", requestID)
	}
	req := m.requests[idx]
	if req.Status != models.RequestPending {
		return domain.Transitionf(req.Status, models.RequestApproved)
	}

	org := m.findOrg(req.OrganizationID)
	if org == nil {
		return domain.NotFoundf("organization %s", req.OrganizationID)
	}

	m.memberships = append(m.memberships, &models.Membership{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
	})
	if req.Role == models.MemberTutor {
		org.TutorIDs = append(org.TutorIDs, req.UserID)
	} else {
		org.LearnerIDs = append(org.LearnerIDs, req.UserID)
	}
	m.requests = append(m.requests[:idx], m.requests[idx+1:]...)
	return nil
}

func (m *Memory) RejectRequest(_ context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.ID == requestID {
			if req.Status != models.RequestPending {
				return domain.NotFoundf("pending membership request %s", requestID)
			}
			req.Status = models.RequestRejected
			return nil
		}
	}
	return domain.NotFoundf("pending membership request %s", requestID)
}

func (m *Memory) findOrg(id string) *models.Organization {
	for _, org := range m.orgs {
		if org.ID == id {
			return org
		}
	}
	return nil
}
