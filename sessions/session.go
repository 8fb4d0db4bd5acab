package sessions

import (
	"time"

	"github.com/jrsteele09/go-dashboard/users"
)

// Session is the enriched identity for one request. It is derived from a verified
// session token on every request and never mutated after Enrich returns it.
type Session struct {
	SubjectID   string          `json:"id"`              // Token subject, the user ID
	Role        *users.RoleType `json:"role,omitempty"`  // Stored role, nil when the subject is not in the Identity Store
	DisplayName string          `json:"name,omitempty"`  // Name fixed at token issuance
	Email       string          `json:"email,omitempty"` // Email from the token
	Image       *string         `json:"image,omitempty"` // Stored profile image
	ExpiresAt   time.Time       `json:"expires"`         // Token expiry
}

// Authenticated reports whether the session carries a subject
func (s *Session) Authenticated() bool {
	return s != nil && s.SubjectID != ""
}

func (s *Session) HasRole(role users.RoleType) bool {
	return s.Authenticated() && s.Role != nil && *s.Role == role
}

func (s *Session) IsAdmin() bool {
	return s.HasRole(users.RoleAdmin)
}

// RoleString returns the role or "" when absent
func (s *Session) RoleString() string {
	if s == nil || s.Role == nil {
		return ""
	}
	return string(*s.Role)
}
