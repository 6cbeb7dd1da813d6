package model

// Session is a snapshot of the authenticated principal and its credential.
// An empty Token means no credential.
type Session struct {
	User    *User  `json:"user"`
	Token   string `json:"-"` // never rendered
	Loading bool   `json:"loading"`
}

// Authenticated reports whether both a token and a user are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// HasRole reports whether the session user holds one of the given roles.
func (s Session) HasRole(required ...Role) bool {
	if s.User == nil {
		return false
	}
	for _, r := range required {
		if s.User.Role == r {
			return true
		}
	}
	return false
}
