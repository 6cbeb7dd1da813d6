package devserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/me/classroom/pkg/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	srv, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     *model.APIError `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv *Server, email string) string {
	t.Helper()
	w := do(t, srv, "POST", "/auth/login", "", map[string]string{"email": email, "password": SeedPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", email, w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %s", email, w.Body.String())
	}
	return token
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v: %s", err, w.Body.String())
	}
	return env
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Status != "ok" || env.RequestID == "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestNew_NilLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w := do(t, srv, "GET", "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req_client1")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req_client1" {
		t.Errorf("X-Request-ID = %q, want req_client1", got)
	}
}

func TestLogin(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "POST", "/auth/login", "", map[string]string{"email": "Teacher@School.test", "password": SeedPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["role"] != "teacher" {
		t.Errorf("role = %v, want teacher", resp["role"])
	}
	if resp["department"] != "Mathematics" {
		t.Errorf("extra profile field missing: %v", resp)
	}

	claims, err := srv.parseToken(resp["token"].(string))
	if err != nil {
		t.Fatalf("parseToken: %v", err)
	}
	if claims.Role != model.RoleTeacher || claims.Subject != resp["id"] {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLogin_Failures(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"wrong password", map[string]string{"email": SeedAdminEmail, "password": "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", map[string]string{"email": "who@school.test", "password": "x"}, http.StatusUnauthorized, "Invalid email or password"},
		{"missing fields", map[string]string{}, http.StatusBadRequest, "Email and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/auth/login", "", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var resp map[string]any
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["success"] != false || resp["message"] != tt.msg {
				t.Errorf("body = %v", resp)
			}
		})
	}
}

func TestRegisterApproveLogin(t *testing.T) {
	srv := testServer(t)
	reg := map[string]any{"name": "New Kid", "email": "kid@school.test", "password": "secret1"}

	w := do(t, srv, "POST", "/auth/register", "", reg)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/auth/register", "", reg)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = do(t, srv, "POST", "/auth/login", "", map[string]string{"email": "kid@school.test", "password": "secret1"})
	if w.Code != http.StatusForbidden {
		t.Errorf("unapproved login status = %d, want 403", w.Code)
	}

	admin := login(t, srv, SeedAdminEmail)
	w = do(t, srv, "GET", "/admin/users/pending", admin, nil)
	var pending []model.User
	json.Unmarshal(decodeEnvelope(t, w).Data, &pending)
	if len(pending) != 1 || pending[0].Role != model.RoleStudent {
		t.Fatalf("pending = %+v", pending)
	}

	w = do(t, srv, "POST", "/admin/users/kid@school.test/approve", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/auth/login", "", map[string]string{"email": "kid@school.test", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Errorf("approved login status = %d", w.Code)
	}
}

func TestRegister_Invalid(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "POST", "/auth/register", "", map[string]any{"name": "X", "email": "bad", "password": "secret1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "email must be a valid email address") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMe(t *testing.T) {
	srv := testServer(t)
	token := login(t, srv, SeedStudentEmail)

	w := do(t, srv, "GET", "/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		User model.User `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.User.Email != SeedStudentEmail || resp.User.Extra["grade"] != "10" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/auth/me", "/courses", "/assignments", "/announcements", "/attendance"} {
		w := do(t, srv, "GET", path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, w.Code)
		}
		env := decodeEnvelope(t, w)
		if env.Error == nil || env.Error.Code != model.ErrUnauthorized {
			t.Errorf("GET %s: error = %+v", path, env.Error)
		}
	}
}

func TestExpiredToken(t *testing.T) {
	srv := testServer(t)
	token := login(t, srv, SeedStudentEmail)
	srv.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	w := do(t, srv, "GET", "/courses", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAttendanceRoleGate(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		email  string
		status int
	}{
		{SeedAdminEmail, http.StatusOK},
		{SeedTeacherEmail, http.StatusOK},
		{SeedStudentEmail, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			w := do(t, srv, "GET", "/attendance", login(t, srv, tt.email), nil)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestFeatureLists(t *testing.T) {
	srv := testServer(t)

	teacher := login(t, srv, SeedTeacherEmail)
	var courses []model.Course
	json.Unmarshal(decodeEnvelope(t, do(t, srv, "GET", "/courses", teacher, nil)).Data, &courses)
	if len(courses) != 1 || courses[0].Code != "MATH-10" {
		t.Errorf("teacher courses = %+v", courses)
	}

	student := login(t, srv, SeedStudentEmail)
	var announcements []model.Announcement
	json.Unmarshal(decodeEnvelope(t, do(t, srv, "GET", "/announcements", student, nil)).Data, &announcements)
	if len(announcements) != 1 || announcements[0].Audience != "all" {
		t.Errorf("student announcements = %+v", announcements)
	}

	var assignments []model.Assignment
	json.Unmarshal(decodeEnvelope(t, do(t, srv, "GET", "/assignments?course=crs_bio10", student, nil)).Data, &assignments)
	if len(assignments) != 1 || assignments[0].ID != "asg_2" {
		t.Errorf("filtered assignments = %+v", assignments)
	}
}
