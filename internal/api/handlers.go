package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"nateiva/internal/models"
)

// pathTail splits the path after the prefix into its segments.
func pathTail(path, prefix string) []string {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if tail == "" {
		return nil
	}
	return strings.Split(tail, "/")
}

// --- users and session ---

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var user models.User
	if err := decodeBody(r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.svc.Users.SaveUser(r.Context(), &user); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleUser(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/users/")
	if len(parts) != 1 || r.Method != http.MethodGet {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user, err := s.svc.Users.GetUser(r.Context(), parts[0])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.svc.Users.CurrentUser(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"current_user": user})
	case http.MethodPut:
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.svc.Users.SetCurrentUser(r.Context(), body.UserID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"current_user_id": body.UserID})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- tutors and availability ---

func (s *HTTPServer) handleTutors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	filter := models.TutorFilter{
		Language: q.Get("language"),
		Subject:  q.Get("subject"),
	}
	filter.PriceMin, _ = strconv.ParseFloat(q.Get("price_min"), 64)
	filter.PriceMax, _ = strconv.ParseFloat(q.Get("price_max"), 64)
	filter.RatingMin, _ = strconv.ParseFloat(q.Get("rating_min"), 64)

	tutors, err := s.svc.Users.ListTutors(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tutors": tutors})
}

func (s *HTTPServer) handleTutor(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/tutors/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	tutorID := parts[0]

	switch parts[1] {
	case "availability":
		s.handleTutorAvailability(w, r, tutorID)
	case "blocked-dates":
		s.handleTutorBlockedDates(w, r, tutorID)
	case "slots":
		s.handleTutorSlots(w, r, tutorID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleTutorAvailability(w http.ResponseWriter, r *http.Request, tutorID string) {
	switch r.Method {
	case http.MethodGet:
		slots, err := s.svc.Availability.WeeklyAvailability(r.Context(), tutorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
	case http.MethodPut:
		var body struct {
			Slots []models.AvailabilitySlot `json:"slots"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.svc.Availability.SetWeeklyAvailability(r.Context(), tutorID, body.Slots); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": body.Slots})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleTutorBlockedDates(w http.ResponseWriter, r *http.Request, tutorID string) {
	switch r.Method {
	case http.MethodGet:
		dates, err := s.svc.Availability.BlockedDates(r.Context(), tutorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"blocked_dates": dates})
	case http.MethodPost, http.MethodDelete:
		var body struct {
			Date string `json:"date"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		var err error
		if r.Method == http.MethodPost {
			err = s.svc.Availability.AddBlockedDate(r.Context(), tutorID, body.Date)
		} else {
			err = s.svc.Availability.RemoveBlockedDate(r.Context(), tutorID, body.Date)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"date": body.Date})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleTutorSlots(w http.ResponseWriter, r *http.Request, tutorID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slots, err := s.svc.Availability.SlotsForDate(r.Context(), tutorID, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": dateStr, "slots": slots})
}

// --- bookings ---

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload models.Booking
		if err := decodeBody(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		booking, err := s.svc.Bookings.Create(r.Context(), &payload)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)
	case http.MethodGet:
		q := r.URL.Query()
		var (
			bookings []*models.Booking
			err      error
		)
		switch {
		case q.Get("learner_id") != "":
			bookings, err = s.svc.Bookings.ListForLearner(r.Context(), q.Get("learner_id"))
		case q.Get("tutor_id") != "":
			bookings, err = s.svc.Bookings.ListForTutor(r.Context(), q.Get("tutor_id"))
		default:
			writeError(w, http.StatusBadRequest, "learner_id or tutor_id is required")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/bookings/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		booking, err := s.svc.Bookings.Get(r.Context(), parts[0])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case len(parts) == 2 && r.Method == http.MethodPost:
		s.handleBookingAction(w, r, parts[0], parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request, id, action string) {
	ctx := r.Context()
	var err error

	switch action {
	case "cancel":
		err = s.svc.Bookings.Cancel(ctx, id)
	case "confirm":
		err = s.svc.Bookings.Confirm(ctx, id)
	case "complete":
		err = s.svc.Bookings.Complete(ctx, id)
	case "no-show":
		err = s.svc.Bookings.MarkNoShow(ctx, id)
	case "review":
		err = s.svc.Bookings.SetReviewGiven(ctx, id)
	case "reschedule":
		var body struct {
			StartTime time.Time `json:"start_time"`
			EndTime   time.Time `json:"end_time"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.svc.Bookings.Reschedule(ctx, id, body.StartTime, body.EndTime)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeDomainError(w, err)
		return
	}

	booking, err := s.svc.Bookings.Get(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// --- organizations and membership requests ---

func (s *HTTPServer) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		OwnerID     string   `json:"owner_id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Country     string   `json:"country"`
		Languages   []string `json:"languages"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	org, err := s.svc.Memberships.CreateOrganization(r.Context(), body.OwnerID, models.Organization{
		Name:        body.Name,
		Description: body.Description,
		Country:     body.Country,
		Languages:   body.Languages,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (s *HTTPServer) handleOrganization(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/organizations/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		org, err := s.svc.Memberships.Organization(r.Context(), parts[0])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	case len(parts) == 2 && parts[1] == "requests":
		s.handleOrganizationRequests(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleOrganizationRequests(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		pending, err := s.svc.Memberships.PendingRequests(r.Context(), orgID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"requests": pending})
	case http.MethodPost:
		var body struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		req, err := s.svc.Memberships.RequestMembership(r.Context(), body.UserID, orgID, models.MembershipRole(body.Role))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/requests/")
	if len(parts) != 2 || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var err error
	switch parts[1] {
	case "accept":
		err = s.svc.Memberships.AcceptRequest(r.Context(), parts[0])
	case "reject":
		err = s.svc.Memberships.RejectRequest(r.Context(), parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"request_id": parts[0], "result": parts[1] + "ed"})
}
