// Package session owns the authenticated principal and its credential.
// It keeps memory, durable storage and the HTTP client's default
// Authorization header in step across init, login, profile updates and logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/classroom/internal/notify"
	"github.com/me/classroom/internal/router"
	"github.com/me/classroom/internal/store"
	"github.com/me/classroom/pkg/model"
)

// User-facing messages.
const (
	LoginFailedMessage     = "Login failed. Please try again."
	RegisterFailedMessage  = "Registration failed. Please try again."
	RegisteredMessage      = "Registration successful. Your account is awaiting approval."
	LoggedOutMessage       = "Logged out successfully"
	InvalidResponseMessage = "Invalid response from server"
	welcomeMessageFormat   = "Welcome back, %s!"
)

// HTTPClient is the subset of the API client the session needs.
type HTTPClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	SetAuthToken(token string)
	ClearAuthToken()
}

// personTracker is implemented by sinks that tag reports with the principal.
type personTracker interface {
	SetPerson(id, username, email string)
	ClearPerson()
}

// Deps are the collaborators of a Store.
type Deps struct {
	Storage  store.Store
	HTTP     HTTPClient
	Notifier notify.Sink
	Router   router.Router
	Roles    router.Roles
	Logger   *slog.Logger
}

// Store holds the session. Create it with New, then call Init once.
type Store struct {
	storage  store.Store
	http     HTTPClient
	notifier notify.Sink
	router   router.Router
	roles    router.Roles
	logger   *slog.Logger
	now      func() time.Time

	// tx serializes transitions (init, login, logout, update) so none of
	// them observes another half done.
	tx sync.Mutex

	mu          sync.RWMutex
	user        *model.User
	token       string
	loading     bool
	initialized bool
}

// New creates a session in the hydrating state.
func New(deps Deps) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	roles := deps.Roles
	if roles.Paths == nil {
		roles = router.DefaultRoles()
	}
	return &Store{
		storage:  deps.Storage,
		http:     deps.HTTP,
		notifier: notifier,
		router:   deps.Router,
		roles:    roles,
		logger:   logger.With("component", "session"),
		now:      time.Now,
		loading:  true,
	}
}

// State returns a snapshot of the session.
func (s *Store) State() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Session{User: s.user.Clone(), Token: s.token, Loading: s.loading}
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Token returns the current credential, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether both a user and a token are held.
func (s *Store) Authenticated() bool {
	return s.State().Authenticated()
}

// Loading reports whether the session is still hydrating.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// HasRole reports whether the current user holds one of required.
func (s *Store) HasRole(required ...model.Role) bool {
	return s.State().HasRole(required...)
}

// LandingPath returns where the current user lands, or the login path when
// nobody is signed in.
func (s *Store) LandingPath() string {
	u := s.User()
	if u == nil {
		return router.PathLogin
	}
	return s.roles.LandingPath(u.Role)
}

func (s *Store) setSession(user *model.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	if token != "" {
		s.http.SetAuthToken(token)
	} else {
		s.http.ClearAuthToken()
	}
	if pt, ok := s.notifier.(personTracker); ok {
		if user != nil {
			pt.SetPerson(user.ID, user.Name, user.Email)
		} else {
			pt.ClearPerson()
		}
	}
}

// persist writes user then token. If the token write fails, the previous
// user record is restored so storage keeps matching memory.
func (s *Store) persist(ctx context.Context, user *model.User, token string) error {
	if err := store.SetJSON(ctx, s.storage, store.KeyUser, user); err != nil {
		return fmt.Errorf("persisting user: %w", err)
	}
	if err := s.storage.Set(ctx, store.KeyToken, []byte(token)); err != nil {
		s.restoreUser(ctx)
		return fmt.Errorf("persisting token: %w", err)
	}
	return nil
}

func (s *Store) restoreUser(ctx context.Context) {
	prev := s.User()
	var err error
	if prev != nil {
		err = store.SetJSON(ctx, s.storage, store.KeyUser, prev)
	} else {
		err = s.storage.Remove(ctx, store.KeyUser)
	}
	if err != nil {
		s.logger.Error("rolling back user record", "error", err)
	}
}

func (s *Store) purge(ctx context.Context) error {
	return errors.Join(
		s.storage.Remove(ctx, store.KeyToken),
		s.storage.Remove(ctx, store.KeyUser),
	)
}
