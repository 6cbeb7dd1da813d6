package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/classroom/pkg/model"
)

// Claims are carried by issued tokens.
type Claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

func (s *Server) parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) account(email string) *account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[strings.ToLower(email)]
}

var errEmailTaken = errors.New("email already registered")

// addAccount stores a new principal. Role defaults to student.
func (s *Server) addAccount(req model.RegisterRequest, approved bool) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	acct := &account{
		user: model.User{
			ID:    "usr_" + uuid.New().String()[:8],
			Name:  req.Name,
			Email: req.Email,
			Role:  role,
			Extra: req.Extra,
		},
		hash:     hash,
		approved: approved,
	}

	key := strings.ToLower(req.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; ok {
		return nil, errEmailTaken
	}
	s.accounts[key] = acct
	return acct, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin answers with {token, ...user} or {success: false, message}.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAuthFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondAuthFailure(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	acct := s.account(req.Email)
	if acct == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		respondAuthFailure(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !acct.approved {
		respondAuthFailure(w, http.StatusForbidden, "Your account is awaiting approval")
		return
	}

	token, err := s.issueToken(acct.user)
	if err != nil {
		s.logger.Error("issue token", "error", err)
		respondAuthFailure(w, http.StatusInternalServerError, "Could not sign in right now")
		return
	}

	body := acct.user.Fields()
	body["token"] = token
	s.logger.Info("login", "user", acct.user.ID, "role", acct.user.Role)
	writeJSON(w, http.StatusOK, body)
}

// handleRegister creates an unapproved account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAuthFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondAuthFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := s.addAccount(req, false)
	if errors.Is(err, errEmailTaken) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "Email already registered"})
		return
	}
	if err != nil {
		s.logger.Error("register", "error", err)
		respondAuthFailure(w, http.StatusInternalServerError, "Could not register right now")
		return
	}

	s.logger.Info("registered", "user", acct.user.ID, "role", acct.user.Role)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration received. An administrator will approve your account.",
	})
}

// handleMe returns the caller's current profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": userFrom(r)})
}

// handleListPending lists accounts waiting for approval.
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pending := []model.User{}
	for _, a := range s.accounts {
		if !a.approved {
			pending = append(pending, a.user)
		}
	}
	s.mu.RUnlock()
	respondOK(w, requestIDFrom(r), pending)
}

// handleApprove activates a registered account.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(email)]
	if ok {
		acct.approved = true
	}
	s.mu.Unlock()
	if !ok {
		respondError(w, requestIDFrom(r), http.StatusNotFound, model.ErrNotFound, "no account for "+email)
		return
	}
	respondOK(w, requestIDFrom(r), model.Message{Message: "Approved " + email})
}
