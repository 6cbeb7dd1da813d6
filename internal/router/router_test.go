package router

import (
	"testing"

	"github.com/me/classroom/pkg/model"
)

func TestRoles_LandingPath(t *testing.T) {
	r := DefaultRoles()
	tests := []struct {
		role model.Role
		want string
	}{
		{model.RoleAdmin, "/admin/dashboard"},
		{model.RoleTeacher, "/teacher/dashboard"},
		{model.RoleStudent, "/student/dashboard"},
		{"parent", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := r.LandingPath(tt.role); got != tt.want {
				t.Errorf("LandingPath(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestRoles_ZeroValue(t *testing.T) {
	var r Roles
	if got := r.LandingPath(model.RoleAdmin); got != PathDefault {
		t.Errorf("zero Roles LandingPath = %q, want %q", got, PathDefault)
	}
}

func TestHistory_NavigateReplace(t *testing.T) {
	h := NewHistory(PathLogin)
	var calls []string
	h.OnNavigate = func(path string, _ NavigateOptions) { calls = append(calls, path) }

	h.Navigate("/student/dashboard", NavigateOptions{Replace: true})
	if h.Len() != 1 || h.Current() != "/student/dashboard" {
		t.Errorf("after replace: len %d current %q", h.Len(), h.Current())
	}

	h.Navigate("/courses", NavigateOptions{})
	if h.Len() != 2 || h.Current() != "/courses" {
		t.Errorf("after push: len %d current %q", h.Len(), h.Current())
	}

	back, ok := h.Back()
	if !ok || back != "/student/dashboard" {
		t.Errorf("Back() = %q, %v", back, ok)
	}
	if _, ok := h.Back(); ok {
		t.Error("Back() on a single entry should fail")
	}

	if len(calls) != 2 {
		t.Errorf("OnNavigate called %d times, want 2", len(calls))
	}
}

func TestHistory_ReplaceOnEmpty(t *testing.T) {
	h := NewHistory("")
	if h.Current() != "" {
		t.Errorf("Current() = %q, want empty", h.Current())
	}
	h.Navigate(PathLogin, NavigateOptions{Replace: true})
	if h.Len() != 1 || h.Current() != PathLogin {
		t.Errorf("len %d current %q", h.Len(), h.Current())
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory("")
	for i := 0; i < DefaultHistoryLimit+10; i++ {
		h.Navigate("/p", NavigateOptions{})
	}
	if h.Len() != DefaultHistoryLimit {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistoryLimit)
	}
}
