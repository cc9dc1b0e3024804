package sandbox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"subsctl/internal/logging"
	"subsctl/internal/models"
	"subsctl/internal/util"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
)

// authCookie is the cookie the sign-in endpoint sets
const authCookie = "auth_token"

// Options configure the sandbox API
type Options struct {
	Email    string
	Password string
	Token    string
	Logger   *slog.Logger
}

// Server serves a local subscriptions API backed by a Store
type Server struct {
	store  *Store
	opts   Options
	logger *slog.Logger
}

// NewServer creates the sandbox API. Empty credentials fall back to
// admin@example.com / secret.
func NewServer(store *Store, opts Options) *Server {
	if opts.Email == "" {
		opts.Email = "admin@example.com"
	}
	if opts.Password == "" {
		opts.Password = "secret"
	}
	if opts.Token == "" {
		opts.Token = "sandbox-token"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Server{store: store, opts: opts, logger: opts.Logger}
}

// Routes returns the router for the sandbox endpoints
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signin", s.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/signout", s.SignOut)
			r.Get("/account/me", s.Me)
			r.Get("/subscriptions", s.List)
			r.Get("/subscriptions/{id}", s.Get)
			r.Delete("/subscriptions/{id}", s.Delete)
		})
	})

	return r
}

// errorResponse is the error body the client decodes
type errorResponse struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeValidation(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Message: message,
		Errors:  map[string][]string{field: {message}},
	})
}

func (s *Server) user() models.Member {
	return models.Member{ID: 1, Name: "Sandbox Admin", Email: s.opts.Email}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("sandbox request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			if cookie, err := r.Cookie(authCookie); err == nil {
				token = cookie.Value
			}
		}
		if token != s.opts.Token {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn handles POST /v1/auth/signin
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !strings.EqualFold(body.Email, s.opts.Email) || body.Password != s.opts.Password {
		writeValidation(w, "email", "These credentials do not match our records.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    s.opts.Token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": s.opts.Token,
		"user":  s.user(),
	})
}

// SignOut handles POST /v1/auth/signout
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: authCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/account/me
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": s.user()})
}

// List handles GET /v1/subscriptions
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	filters, err := models.ParseFilters(r.URL.RawQuery)
	if err != nil {
		writeValidation(w, "page", err.Error())
		return
	}

	if filters.Status != "" && !lo.Contains(models.Statuses, filters.Status) {
		writeValidation(w, "status", "The selected status is invalid.")
		return
	}

	page, err := s.store.List(r.Context(), filters)
	if err != nil {
		s.logger.Error("Failed to list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list subscriptions")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /v1/subscriptions/{id}
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	sub, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Failed to get subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": sub})
}

// Delete handles DELETE /v1/subscriptions/{id}
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	if err := s.store.SoftDelete(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Failed to delete subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrSubscriptionNotFound):
		writeError(w, http.StatusNotFound, "Subscription not found")
	case errors.Is(err, ErrAlreadyDeleted):
		writeError(w, http.StatusConflict, "Subscription is already deleted")
	default:
		s.logger.Error(message, "error", err)
		writeError(w, http.StatusInternalServerError, message)
	}
}
