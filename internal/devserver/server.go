// Package devserver is an in-process stand-in for the classroom service.
// It issues HS256 JWTs, keeps accounts and coursework in memory, and answers
// the endpoints the client core depends on.
package devserver

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/classroom/internal/logging"
	"github.com/me/classroom/pkg/model"
)

// Config holds configuration for the dev server.
type Config struct {
	Addr       string        // Listen address (default ":8080")
	Secret     string        // HMAC key for issued tokens
	TokenTTL   time.Duration // Lifetime of issued tokens
	BcryptCost int           // Password hashing cost; tests use bcrypt.MinCost
	Seed       bool          // Load the demo school
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:       ":8080",
		Secret:     "classroom-dev-secret",
		TokenTTL:   24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
		Seed:       true,
	}
}

// account is a stored principal.
type account struct {
	user     model.User
	hash     []byte
	approved bool
}

// Server is the dev server.
type Server struct {
	router chi.Router
	logger *slog.Logger
	config Config
	now    func() time.Time

	mu            sync.RWMutex
	accounts      map[string]*account // by lowercased email
	courses       []model.Course
	assignments   []model.Assignment
	announcements []model.Announcement
	attendance    []model.AttendanceRecord
}

// New creates a dev server with all routes registered.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger.With("component", "devserver"),
		config:   cfg,
		now:      time.Now,
		accounts: make(map[string]*account),
	}
	if cfg.Seed {
		if err := s.seed(); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.With(s.authMiddleware).Get("/me", s.handleMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/courses", s.handleListCourses)
		r.Get("/assignments", s.handleListAssignments)
		r.Get("/announcements", s.handleListAnnouncements)

		r.With(requireRole(model.RoleAdmin, model.RoleTeacher)).Get("/attendance", s.handleListAttendance)

		r.With(requireRole(model.RoleAdmin)).Route("/admin/users", func(r chi.Router) {
			r.Get("/pending", s.handleListPending)
			r.Post("/{email}/approve", s.handleApprove)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, requestIDFrom(r), map[string]string{"status": "healthy"})
}
