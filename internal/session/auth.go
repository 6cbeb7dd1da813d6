package session

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/me/classroom/internal/router"
	"github.com/me/classroom/internal/store"
	"github.com/me/classroom/pkg/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// envelope keys that are never part of the user record.
var envelopeKeys = []string{"token", "success", "message"}

// Login authenticates with email and password. On success the session is
// persisted, the HTTP client starts sending the token, and the router is sent
// to the user's landing path. Failures never touch the session.
func (s *Store) Login(ctx context.Context, email, password string) model.AuthResult {
	s.tx.Lock()
	defer s.tx.Unlock()

	var resp map[string]any
	if err := s.http.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return s.fail("login", err, LoginFailedMessage)
	}

	user, token, err := parseLogin(resp)
	if err != nil {
		return s.fail("login", err, LoginFailedMessage)
	}

	if err := s.persist(ctx, user, token); err != nil {
		s.logger.Error("login: saving session", "error", err)
		return s.fail("login", err, LoginFailedMessage)
	}
	s.setSession(user, token)

	welcome := fmt.Sprintf(welcomeMessageFormat, user.DisplayName())
	s.notifier.Success(welcome)

	path := s.roles.LandingPath(user.Role)
	if s.router != nil {
		s.router.Navigate(path, router.NavigateOptions{Replace: true})
	}
	s.logger.Debug("logged in", "user", user.ID, "role", user.Role, "route", path)
	return model.AuthResult{Success: true, Message: welcome, Route: path}
}

// parseLogin accepts {token, ...user fields} or {token, user: {...}}.
// An explicit {success: false, message} is a server error.
func parseLogin(resp map[string]any) (*model.User, string, error) {
	if err := explicitFailure(resp); err != nil {
		return nil, "", err
	}
	token, _ := resp["token"].(string)
	if token == "" {
		return nil, "", model.NewValidationError(InvalidResponseMessage)
	}

	user, err := model.UserFromFields(userFields(resp))
	if err == nil {
		err = user.Validate()
	}
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return nil, "", &model.ValidationError{Message: InvalidResponseMessage, Fields: verr.Fields, Err: err}
		}
		return nil, "", &model.ValidationError{Message: InvalidResponseMessage, Err: err}
	}
	return user, token, nil
}

// explicitFailure returns a ServerError when resp carries success: false.
func explicitFailure(resp map[string]any) error {
	if ok, present := resp["success"].(bool); present && !ok {
		msg, _ := resp["message"].(string)
		return &model.ServerError{Message: msg}
	}
	return nil
}

// userFields extracts the user record from a response, nested under "user"
// or flattened next to the envelope keys.
func userFields(resp map[string]any) map[string]any {
	if nested, ok := resp["user"].(map[string]any); ok {
		return maps.Clone(nested)
	}
	fields := maps.Clone(resp)
	for _, k := range envelopeKeys {
		delete(fields, k)
	}
	return fields
}

// Register creates an account. It never signs the user in: new accounts
// wait for approval, so a token in the response is discarded.
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) model.AuthResult {
	if err := req.Validate(); err != nil {
		return s.fail("register", err, RegisterFailedMessage)
	}

	var resp map[string]any
	if err := s.http.Post(ctx, "/auth/register", req, &resp); err != nil {
		return s.fail("register", err, RegisterFailedMessage)
	}
	if err := explicitFailure(resp); err != nil {
		return s.fail("register", err, RegisterFailedMessage)
	}

	msg, _ := resp["message"].(string)
	token, _ := resp["token"].(string)
	if msg == "" && token == "" {
		return s.fail("register", model.NewValidationError(InvalidResponseMessage), RegisterFailedMessage)
	}
	if token != "" {
		s.logger.Debug("register: discarding token, account needs approval", "email", req.Email)
	}
	if msg == "" {
		msg = RegisteredMessage
	}
	s.notifier.Success(msg)
	return model.AuthResult{Success: true, Message: msg}
}

func (s *Store) fail(op string, err error, fallback string) model.AuthResult {
	msg := model.UserMessage(err, fallback)
	s.logger.Debug(op+" failed", "error", err)
	s.notifier.Error(msg)
	return model.AuthResult{Message: msg}
}

// Logout clears the session from storage and memory, drops the
// Authorization header, and sends the router to the login path. A storage
// failure is logged; memory is cleared regardless and the next Init purges
// whatever was left behind.
func (s *Store) Logout(ctx context.Context) {
	s.tx.Lock()
	defer s.tx.Unlock()

	if err := s.purge(ctx); err != nil {
		s.logger.Error("logout: removing stored session", "error", err)
	}
	s.setSession(nil, "")
	s.notifier.Success(LoggedOutMessage)
	if s.router != nil {
		s.router.Navigate(router.PathLogin, router.NavigateOptions{Replace: true})
	}
	s.logger.Debug("logged out")
}

// UpdateUser shallow-merges fields into the current user, persists the
// result and swaps it in. The token is never changed.
func (s *Store) UpdateUser(ctx context.Context, fields map[string]any) (*model.User, error) {
	s.tx.Lock()
	defer s.tx.Unlock()

	cur := s.User()
	if cur == nil || s.Token() == "" {
		return nil, model.ErrNotAuthenticated
	}

	merged, err := cur.Merge(fields)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if err := store.SetJSON(ctx, s.storage, store.KeyUser, merged); err != nil {
		return nil, fmt.Errorf("persisting user: %w", err)
	}

	s.mu.Lock()
	s.user = merged
	s.mu.Unlock()
	if pt, ok := s.notifier.(personTracker); ok {
		pt.SetPerson(merged.ID, merged.Name, merged.Email)
	}
	s.logger.Debug("user updated", "user", merged.ID)
	return merged.Clone(), nil
}
