// Package router maps roles to landing paths and records navigation.
package router

import (
	"sync"

	"github.com/me/classroom/pkg/model"
)

// Well-known paths.
const (
	PathLogin   = "/login"
	PathDefault = "/"
)

// NavigateOptions controls a single navigation.
type NavigateOptions struct {
	// Replace swaps the current history entry instead of pushing a new one.
	Replace bool
}

// Router performs navigation to a path.
type Router interface {
	Navigate(path string, opts NavigateOptions)
}

// Roles maps a role to its landing path. Unknown roles land on Default.
type Roles struct {
	Paths   map[model.Role]string
	Default string
}

// DefaultRoles returns the standard landing paths.
func DefaultRoles() Roles {
	return Roles{
		Paths: map[model.Role]string{
			model.RoleAdmin:   "/admin/dashboard",
			model.RoleTeacher: "/teacher/dashboard",
			model.RoleStudent: "/student/dashboard",
		},
		Default: PathDefault,
	}
}

// LandingPath returns the canonical path for role. It never fails.
func (r Roles) LandingPath(role model.Role) string {
	if p, ok := r.Paths[role]; ok && p != "" {
		return p
	}
	if r.Default != "" {
		return r.Default
	}
	return PathDefault
}

// History is an in-memory Router with a bounded back stack.
type History struct {
	mu      sync.Mutex
	entries []string
	limit   int

	// OnNavigate, if set, is called after every navigation with the new path.
	OnNavigate func(path string, opts NavigateOptions)
}

// DefaultHistoryLimit bounds the back stack.
const DefaultHistoryLimit = 50

// NewHistory returns a History starting at start (empty means no entry).
func NewHistory(start string) *History {
	h := &History{limit: DefaultHistoryLimit}
	if start != "" {
		h.entries = []string{start}
	}
	return h
}

func (h *History) Navigate(path string, opts NavigateOptions) {
	h.mu.Lock()
	if opts.Replace && len(h.entries) > 0 {
		h.entries[len(h.entries)-1] = path
	} else {
		h.entries = append(h.entries, path)
		if len(h.entries) > h.limit {
			h.entries = h.entries[len(h.entries)-h.limit:]
		}
	}
	hook := h.OnNavigate
	h.mu.Unlock()

	if hook != nil {
		hook(path, opts)
	}
}

// Current returns the top of the stack, or "" when nothing was visited.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Back pops the current entry and returns the new current path.
// It returns false when there is nothing to go back to.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return "", false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
