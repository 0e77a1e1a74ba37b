package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nateiva/internal/config"
	"nateiva/internal/events"
	"nateiva/internal/models"
	"nateiva/internal/repository"
	"nateiva/internal/service"
	"nateiva/internal/snapshot"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg config.APIConfig) *HTTPServer {
	t.Helper()
	repo := repository.NewMemory()
	logger := zerolog.Nop()
	bus := events.NewEventBus()
	snapshotter := service.NewSnapshotter(repo, snapshot.NewMemoryStore(), &logger)

	users := service.NewUserService(repo, snapshotter, &logger)
	ctx := context.Background()
	require.NoError(t, users.SaveUser(ctx, &models.User{ID: "l1", Name: "Lev", Role: models.RoleLearner}))
	require.NoError(t, users.SaveUser(ctx, &models.User{ID: "t1", Name: "Tanya", Role: models.RoleTutor, Subjects: []string{"maths"}, Languages: []string{"en"}, PricePerHour: 25}))
	require.NoError(t, users.SaveUser(ctx, &models.User{ID: "o1", Name: "Olga", Role: models.RoleCenterOwner}))

	svc := Services{
		Bookings:     service.NewBookingService(repo, bus, nil, config.BookingConfig{}, &logger),
		Availability: service.NewAvailabilityService(repo, &logger),
		Memberships:  service.NewMembershipService(repo, bus, snapshotter, &logger),
		Users:        users,
	}
	return NewHTTPServer(cfg, svc, &logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func futureHour(h int) time.Time {
	return time.Now().Add(time.Duration(h) * time.Hour).Truncate(time.Minute)
}

func TestTutorEndpoints(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	t.Run("ListTutorsWithFilter", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/tutors?subject=maths&language=en", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Tutors []*models.User `json:"tutors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Tutors, 1)
		assert.Equal(t, "t1", resp.Tutors[0].ID)
	})

	t.Run("SetAvailabilityAndGetSlots", func(t *testing.T) {
		body := map[string]any{
			"slots": []models.AvailabilitySlot{{Day: 1, Start: 540, End: 720}},
		}
		rec := doJSON(t, h, http.MethodPut, "/api/v1/tutors/t1/availability", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		// next Monday is always bookable
		date := time.Now().AddDate(0, 0, 7)
		for date.Weekday() != time.Monday {
			date = date.AddDate(0, 0, 1)
		}
		rec = doJSON(t, h, http.MethodGet, "/api/v1/tutors/t1/slots?date="+date.Format(models.DateLayout), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Slots []models.TimeSlot `json:"slots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Slots, 3)
		assert.Equal(t, "09:00", resp.Slots[0].Label)
	})

	t.Run("InvalidSlotDate", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/tutors/t1/slots?date=junk", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BlockedDates", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/tutors/t1/blocked-dates", map[string]string{"date": "2030-01-02"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodGet, "/api/v1/tutors/t1/blocked-dates", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "2030-01-02")
	})
}

func TestBookingEndpoints(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	createBooking := func(t *testing.T, learner string, start time.Time) *models.Booking {
		t.Helper()
		body := map[string]any{
			"learner_id": learner,
			"tutor_id":   "t1",
			"subject":    "maths",
			"start_time": start,
			"end_time":   start.Add(time.Hour),
			"price":      25,
		}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var booking models.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
		return &booking
	}

	t.Run("CreateAndFetch", func(t *testing.T) {
		booking := createBooking(t, "l1", futureHour(24))
		assert.Equal(t, models.StatusPending, booking.Status)

		rec := doJSON(t, h, http.MethodGet, "/api/v1/bookings/"+booking.ID, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodGet, "/api/v1/bookings?learner_id=l1", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), booking.ID)
	})

	t.Run("ConflictReturns409", func(t *testing.T) {
		start := futureHour(48)
		createBooking(t, "l1", start)

		body := map[string]any{
			"learner_id": "l1",
			"tutor_id":   "t1",
			"start_time": start.Add(30 * time.Minute),
			"end_time":   start.Add(90 * time.Minute),
		}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings", body, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "conflict")
	})

	t.Run("LifecycleActions", func(t *testing.T) {
		booking := createBooking(t, "l1", futureHour(72))

		rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/confirm", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/complete", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		// completed is terminal
		rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/cancel", nil, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/review", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"review_given":true`)
	})

	t.Run("Reschedule", func(t *testing.T) {
		booking := createBooking(t, "l1", futureHour(96))
		newStart := futureHour(120)

		body := map[string]any{"start_time": newStart, "end_time": newStart.Add(time.Hour)}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings/"+booking.ID+"/reschedule", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated models.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, newStart.UTC(), updated.StartTime.UTC())
	})

	t.Run("ValidationReturns400", func(t *testing.T) {
		body := map[string]any{
			"learner_id": "l1",
			"tutor_id":   "l1",
			"start_time": futureHour(24),
			"end_time":   futureHour(25),
		}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bookings", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownBookingReturns404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bookings/ghost", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMembershipEndpoints(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/organizations", map[string]any{
		"owner_id": "o1",
		"name":     "Lingua Centre",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var org models.Organization
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &org))

	rec = doJSON(t, h, http.MethodPost, "/api/v1/organizations/"+org.ID+"/requests", map[string]string{
		"user_id": "t1",
		"role":    "tutor",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var req models.MembershipRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &req))

	// duplicate request is a conflict
	rec = doJSON(t, h, http.MethodPost, "/api/v1/organizations/"+org.ID+"/requests", map[string]string{
		"user_id": "t1",
		"role":    "tutor",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/requests/"+req.ID+"/accept", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/organizations/"+org.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tutor_ids":["t1"]`)
}

func TestSessionEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPut, "/api/v1/session", map[string]string{"user_id": "l1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/session", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"l1"`)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/session", map[string]string{"user_id": "ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthAndRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Name: "full", Key: "secret"},
				{Name: "reader", Key: "read-only", Permissions: []string{"read:bookings", "read:availability"}},
			},
		},
	}
	srv := newTestServer(t, cfg)
	h := srv.Handler()

	t.Run("MissingKey", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/tutors", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongKey", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/tutors", nil, map[string]string{"x-api-key": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("FullAccessKey", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/tutors", nil, map[string]string{"x-api-key": "secret"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		headers := map[string]string{"x-api-key": "read-only"}
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bookings?learner_id=l1", nil, headers)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/api/v1/bookings", map[string]string{}, headers)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("RateLimit", func(t *testing.T) {
		limited := newTestServer(t, config.APIConfig{
			RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1},
		})
		lh := limited.Handler()

		first := doJSON(t, lh, http.MethodGet, "/api/v1/tutors", nil, nil)
		require.Equal(t, http.StatusOK, first.Code)

		var limitedHit bool
		for i := 0; i < 3; i++ {
			if doJSON(t, lh, http.MethodGet, "/api/v1/tutors", nil, nil).Code == http.StatusTooManyRequests {
				limitedHit = true
				break
			}
		}
		assert.True(t, limitedHit, "expected a 429 once the burst is exhausted")
	})
}
