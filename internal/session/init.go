package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/classroom/internal/store"
	"github.com/me/classroom/pkg/model"
)

// errTokenExpired marks a persisted JWT whose exp claim has passed.
var errTokenExpired = errors.New("token expired")

// Init hydrates the session from storage. Only the first call does any work;
// later calls return the current state. Incomplete, corrupt or expired stored
// sessions are purged and the session starts unauthenticated.
func (s *Store) Init(ctx context.Context) model.Session {
	s.tx.Lock()
	defer s.tx.Unlock()

	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return s.State()
	}

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.initialized = true
		s.mu.Unlock()
	}()

	user, token, err := s.load(ctx)
	switch {
	case err == nil && user != nil:
		s.setSession(user, token)
		s.logger.Debug("session restored", "user", user.ID, "role", user.Role)
	case err == nil:
		s.logger.Debug("no stored session")
	default:
		var corrupt *model.StorageCorruptionError
		if !errors.As(err, &corrupt) {
			s.logger.Warn("reading stored session", "error", err)
			break
		}
		s.logger.Warn("discarding stored session", "key", corrupt.Key, "error", corrupt.Err)
		if err := s.purge(ctx); err != nil {
			s.logger.Error("purging stored session", "error", err)
		}
	}

	st := s.State()
	st.Loading = false
	return st
}

// load returns the stored user and token. It returns nil, "", nil when
// nothing is stored and a *model.StorageCorruptionError when the stored
// entries cannot be trusted.
func (s *Store) load(ctx context.Context) (*model.User, string, error) {
	var decodeErr *store.DecodeError
	raw, hasToken, err := s.storage.Get(ctx, store.KeyToken)
	if errors.As(err, &decodeErr) {
		return nil, "", &model.StorageCorruptionError{Key: store.KeyToken, Err: decodeErr.Err}
	}
	if err != nil {
		return nil, "", err
	}

	var user model.User
	hasUser, err := store.GetJSON(ctx, s.storage, store.KeyUser, &user)
	if errors.As(err, &decodeErr) {
		return nil, "", &model.StorageCorruptionError{Key: store.KeyUser, Err: decodeErr.Err}
	}
	if err != nil {
		return nil, "", err
	}

	token := string(raw)
	switch {
	case !hasToken && !hasUser:
		return nil, "", nil
	case !hasToken || token == "":
		return nil, "", &model.StorageCorruptionError{Key: store.KeyToken, Err: errors.New("missing token")}
	case !hasUser:
		return nil, "", &model.StorageCorruptionError{Key: store.KeyUser, Err: errors.New("missing user")}
	}

	if err := user.Validate(); err != nil {
		return nil, "", &model.StorageCorruptionError{Key: store.KeyUser, Err: err}
	}
	if err := s.checkExpiry(token); err != nil {
		return nil, "", &model.StorageCorruptionError{Key: store.KeyToken, Err: err}
	}
	return &user, token, nil
}

// checkExpiry rejects a JWT whose exp claim is in the past. Tokens that are
// not JWTs are opaque and accepted as is. Signatures are not checked here;
// the service does that on every request.
func (s *Store) checkExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Debug("stored token is opaque", "reason", err)
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !exp.After(s.now()) {
		s.logger.Debug("stored token expired", slog.Time("exp", exp.Time))
		return errTokenExpired
	}
	return nil
}
