package authflowrepo

import "time"

// MaxAge bounds how long a started external sign-in may take to come back
const MaxAge = 10 * time.Minute

// AuthFlowState is what the server remembers between redirecting to the OIDC
// provider and handling its callback, keyed by the state parameter.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	CallbackURL  string
	CreatedAt    time.Time
}

func (s *AuthFlowState) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > MaxAge
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns and removes the state so a callback can only be used once
	Take(state string) (*AuthFlowState, error)
	Delete(state string) error
}
