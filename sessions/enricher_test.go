package sessions_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/users"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	users.Repo
	err error
}

func (f *failingRepo) GetByID(context.Context, string) (*users.User, error) {
	return nil, f.err
}

func claimsFor(sub, role string) *token.Claims {
	return &token.Claims{
		Role:  role,
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Unix(1_900_000_000, 0)),
		},
	}
}

func TestEnrich_KnownSubject(t *testing.T) {
	ctx := context.Background()
	repo := users.NewInMemoryRepo()
	require.NoError(t, repo.Create(ctx, &users.User{ID: "u1", Email: "ada@example.com", Role: users.RoleAdmin}))

	sess, err := sessions.NewEnricher(repo).Enrich(ctx, claimsFor("u1", "ADMIN"))
	require.NoError(t, err)
	require.Equal(t, "u1", sess.SubjectID)
	require.NotNil(t, sess.Role)
	require.Equal(t, users.RoleAdmin, *sess.Role)
	require.Nil(t, sess.Image)
	require.True(t, sess.IsAdmin())
	require.Equal(t, "Ada Lovelace", sess.DisplayName)
	require.Equal(t, time.Unix(1_900_000_000, 0), sess.ExpiresAt)
}

func TestEnrich_StoredRoleWins(t *testing.T) {
	ctx := context.Background()
	repo := users.NewInMemoryRepo()
	require.NoError(t, repo.Create(ctx, &users.User{
		ID:    "u1",
		Email: "ada@example.com",
		Role:  users.RoleUser,
		Image: utils.Ptr("https://img.example.com/ada.png"),
	}))

	// Token still claims ADMIN after a demotion
	sess, err := sessions.NewEnricher(repo).Enrich(ctx, claimsFor("u1", "ADMIN"))
	require.NoError(t, err)
	require.Equal(t, "USER", sess.RoleString())
	require.False(t, sess.IsAdmin())
	require.Equal(t, "https://img.example.com/ada.png", utils.Value(sess.Image))
}

func TestEnrich_UnknownSubject(t *testing.T) {
	sess, err := sessions.NewEnricher(users.NewInMemoryRepo()).Enrich(context.Background(), claimsFor("ghost", "ADMIN"))
	require.NoError(t, err)
	require.Equal(t, "ghost", sess.SubjectID)
	require.Nil(t, sess.Role)
	require.Nil(t, sess.Image)
	require.True(t, sess.Authenticated())
	require.False(t, sess.IsAdmin())
}

func TestEnrich_NoSubject(t *testing.T) {
	enricher := sessions.NewEnricher(users.NewInMemoryRepo())

	_, err := enricher.Enrich(context.Background(), claimsFor("", "ADMIN"))
	require.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = enricher.Enrich(context.Background(), nil)
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestEnrich_StoreFailure(t *testing.T) {
	cause := stderrors.New("connection refused")
	enricher := sessions.NewEnricher(&failingRepo{err: cause})

	sess, err := enricher.Enrich(context.Background(), claimsFor("u1", "ADMIN"))
	require.Nil(t, sess)
	require.ErrorIs(t, err, errors.ErrUpstream)
	require.ErrorIs(t, err, cause)
}

func TestEnrich_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := users.NewInMemoryRepo()
	require.NoError(t, repo.Create(ctx, &users.User{
		ID:    "u1",
		Email: "ada@example.com",
		Role:  users.RoleAdmin,
		Image: utils.Ptr("https://img.example.com/ada.png"),
	}))
	enricher := sessions.NewEnricher(repo)
	claims := claimsFor("u1", "ADMIN")

	first, err := enricher.Enrich(ctx, claims)
	require.NoError(t, err)
	second, err := enricher.Enrich(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Sessions do not share pointers with each other
	*first.Image = "changed"
	require.Equal(t, "https://img.example.com/ada.png", utils.Value(second.Image))
}
