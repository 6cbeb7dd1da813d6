package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Role classifies a principal. It drives authorization checks and post-login routing.
type Role string

const (
	// RoleAdmin manages users, courses and school-wide announcements.
	RoleAdmin Role = "admin"
	// RoleTeacher manages the courses, assignments and attendance they teach.
	RoleTeacher Role = "teacher"
	// RoleStudent follows courses and submits assignments.
	RoleStudent Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// Valid reports whether r is a member of the role enumeration.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// ParseRole converts a string to a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the authenticated principal as returned by the service.
// Fields the client does not model are kept in Extra and written back
// next to the named fields when the record is encoded.
type User struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email" validate:"omitempty,email"`
	Role  Role           `json:"role" validate:"required,role"`
	Extra map[string]any `json:"-"`
}

// knownUserFields are the JSON keys mapped onto named User fields.
var knownUserFields = []string{"id", "name", "email", "role"}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTeacher returns true if the user has teacher role.
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent returns true if the user has student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// DisplayName returns the name to greet the user with.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "user"
	}
}

// Clone returns a deep-enough copy: Extra is copied shallowly.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = maps.Clone(u.Extra)
	}
	return &c
}

// Fields returns the record as a flat field map.
func (u *User) Fields() map[string]any {
	m := make(map[string]any, len(u.Extra)+len(knownUserFields))
	maps.Copy(m, u.Extra)
	m["id"] = u.ID
	m["name"] = u.Name
	m["email"] = u.Email
	m["role"] = string(u.Role)
	return m
}

// Merge returns a new User with fields shallow-merged over u; later fields win.
func (u *User) Merge(fields map[string]any) (*User, error) {
	m := u.Fields()
	maps.Copy(m, fields)
	return UserFromFields(m)
}

// UserFromFields builds a User from a flat field map.
// The id field accepts numbers as well as strings.
func UserFromFields(fields map[string]any) (*User, error) {
	u := &User{}
	for key, val := range fields {
		switch key {
		case "id":
			u.ID = stringify(val)
		case "name":
			s, ok := val.(string)
			if !ok && val != nil {
				return nil, NewValidationError("invalid user record", FieldError{Field: "name", Message: "must be a string"})
			}
			u.Name = s
		case "email":
			s, ok := val.(string)
			if !ok && val != nil {
				return nil, NewValidationError("invalid user record", FieldError{Field: "email", Message: "must be a string"})
			}
			u.Email = s
		case "role":
			s, ok := val.(string)
			if !ok && val != nil {
				return nil, NewValidationError("invalid user record", FieldError{Field: "role", Message: "must be a string"})
			}
			u.Role = Role(s)
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]any)
			}
			u.Extra[key] = val
		}
	}
	return u, nil
}

// MarshalJSON flattens Extra next to the named fields.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Fields())
}

// UnmarshalJSON collects unknown fields into Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	parsed, err := UserFromFields(fields)
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

// Validate checks that the record can be accepted into a session.
func (u *User) Validate() error {
	return validateStruct("invalid user record", u)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// RegisterRequest is the payload sent to create a new account.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Role     Role           `json:"role,omitempty" validate:"omitempty,role"`
	Extra    map[string]any `json:"-"`
}

// MarshalJSON flattens Extra next to the named fields.
func (r RegisterRequest) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+4)
	maps.Copy(m, r.Extra)
	m["name"] = r.Name
	m["email"] = r.Email
	m["password"] = r.Password
	if r.Role != "" {
		m["role"] = string(r.Role)
	}
	return json.Marshal(m)
}

// Validate checks the payload before it is sent.
func (r *RegisterRequest) Validate() error {
	return validateStruct("invalid registration details", r)
}
