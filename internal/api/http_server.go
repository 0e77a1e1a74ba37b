// Package api exposes the engine's operations over a small JSON HTTP API.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"nateiva/internal/config"
	"nateiva/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Services bundles the business services the API fronts.
type Services struct {
	Bookings     domain.BookingService
	Availability domain.AvailabilityService
	Memberships  domain.MembershipService
	Users        domain.UserService
}

type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	server *http.Server
	auth   *httpAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, svc: svc, logger: logger}
	srv.auth = newHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users", srv.handleUsers)
	mux.HandleFunc("/api/v1/users/", srv.handleUser)
	mux.HandleFunc("/api/v1/session", srv.handleSession)
	mux.HandleFunc("/api/v1/tutors", srv.handleTutors)
	mux.HandleFunc("/api/v1/tutors/", srv.handleTutor)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBooking)
	mux.HandleFunc("/api/v1/organizations", srv.handleOrganizations)
	mux.HandleFunc("/api/v1/organizations/", srv.handleOrganization)
	mux.HandleFunc("/api/v1/requests/", srv.handleRequest)

	handler := srv.loggingMiddleware(srv.auth.wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// httpAuth provides API-key auth and per-key rate limiting.
type httpAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func newHTTPAuth(cfg config.APIConfig) *httpAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &httpAuth{cfg: cfg, clients: m}
}

func (a *httpAuth) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					status = http.StatusForbidden
				}
				writeError(w, status, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = errors.New("permission denied")

func (a *httpAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get("x-api-key"))
	if apiKey == "" {
		return errors.New("missing api key header")
	}

	// constant-time scan so a missing key costs the same as a mismatch
	var client config.APIClientKey
	found := 0
	for key, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			client = c
			found = 1
		}
	}
	if found == 0 {
		return errors.New("invalid api key")
	}

	return a.checkPermissions(client, r)
}

func (a *httpAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermission(r)
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	write := r.Method != http.MethodGet
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v1/bookings"):
		if write {
			return "write:bookings"
		}
		return "read:bookings"
	case strings.HasPrefix(r.URL.Path, "/api/v1/tutors"):
		if write {
			return "write:availability"
		}
		return "read:availability"
	case strings.HasPrefix(r.URL.Path, "/api/v1/organizations"),
		strings.HasPrefix(r.URL.Path, "/api/v1/requests"):
		if write {
			return "write:memberships"
		}
		return "read:memberships"
	}
	return ""
}

func (a *httpAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}
	if !a.getLimiter(a.clientKey(r)).Allow() {
		return errors.New("rate limit exceeded")
	}
	return nil
}

func (a *httpAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get("x-api-key")); apiKey != "" {
		return apiKey
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *httpAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}
	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	if actual, loaded := a.limiters.LoadOrStore(key, lim); loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps domain error kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    err.Error(),
			"conflict": conflict.Booking,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrDuplicateMembership):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
