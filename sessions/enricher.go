package sessions

import (
	"context"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/users"
)

// Enricher turns verified token claims into a Session with one Identity Store lookup
type Enricher struct {
	users users.Repo
}

func NewEnricher(repo users.Repo) *Enricher {
	return &Enricher{users: repo}
}

// Enrich copies identity from claims and adds the stored role and image for the
// subject. A subject the store does not know yields a session without role or image.
// Store failures are returned as ErrUpstream and are never retried.
func (e *Enricher) Enrich(ctx context.Context, claims *token.Claims) (*Session, error) {
	if claims == nil || claims.Subject == "" {
		return nil, errors.ErrUnauthenticated
	}

	sess := &Session{
		SubjectID:   claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}

	user, err := e.users.GetByID(ctx, claims.Subject)
	switch {
	case err == nil:
		role := user.Role
		sess.Role = &role
		sess.Image = utils.ClonePtr(user.Image)
	case errors.Is(err, errors.ErrNotFound):
		// Unknown subject keeps role and image absent
	case errors.Is(err, errors.ErrUpstream):
		return nil, errors.Wrapf(err, "enrich session for %s", claims.Subject)
	default:
		return nil, errors.Upstream(err, "enrich session for "+claims.Subject)
	}
	return sess, nil
}
