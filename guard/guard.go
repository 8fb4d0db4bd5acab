package guard

import (
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/users"
)

// Outcome is the result of evaluating a Policy
type Outcome int

const (
	Allow           Outcome = iota // Request proceeds to the next policy or the handler
	Unauthenticated                // No usable session, send to sign-in
	Unauthorized                   // Session present but not permitted
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Policy decides access from the session alone. A nil session means none was
// presented or it could not be verified. Policies must not have side effects.
type Policy func(sess *sessions.Session) Outcome

// Authenticated allows any session with a subject
func Authenticated(sess *sessions.Session) Outcome {
	if !sess.Authenticated() {
		return Unauthenticated
	}
	return Allow
}

// RequireRole allows authenticated sessions whose stored role is role
func RequireRole(role users.RoleType) Policy {
	return func(sess *sessions.Session) Outcome {
		if !sess.Authenticated() {
			return Unauthenticated
		}
		if !sess.HasRole(role) {
			return Unauthorized
		}
		return Allow
	}
}

// Chain evaluates policies in order and returns the first non-Allow outcome.
// Later policies are not evaluated once one fails.
func Chain(policies ...Policy) Policy {
	return func(sess *sessions.Session) Outcome {
		for _, p := range policies {
			if outcome := p(sess); outcome != Allow {
				return outcome
			}
		}
		return Allow
	}
}

// Evaluate runs policy against sess, treating a nil policy as Allow
func Evaluate(policy Policy, sess *sessions.Session) Outcome {
	if policy == nil {
		return Allow
	}
	return policy(sess)
}
