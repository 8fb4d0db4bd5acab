package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/token/keys"
	"github.com/jrsteele09/go-dashboard/users"
	"github.com/stretchr/testify/require"
)

type issuerFixture struct {
	issuer  *token.Issuer
	revoked *token.InMemoryRevokedTokenCache
	user    *users.User
}

func setupIssuerFixture(t *testing.T) *issuerFixture {
	t.Helper()
	kp, err := keys.GenerateRSAKeyPair("test-key", 2048)
	require.NoError(t, err)
	revoked := token.NewInMemoryRevokedTokenCache()
	return &issuerFixture{
		issuer:  token.NewIssuer(keys.NewKeyPairSigner(kp), "http://localhost:8080", time.Hour, revoked),
		revoked: revoked,
		user: &users.User{
			ID:        "u1",
			Email:     "ada@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Role:      users.RoleAdmin,
		},
	}
}

func withNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = prev })
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	f := setupIssuerFixture(t)

	raw, issued, err := f.issuer.Issue(f.user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)
	require.Equal(t, "Ada Lovelace", issued.Name)

	claims, err := f.issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, "Ada Lovelace", claims.Name)
	require.Equal(t, issued.ID, claims.ID)
}

func TestIssuer_NameFixedAtIssuance(t *testing.T) {
	f := setupIssuerFixture(t)

	raw, _, err := f.issuer.Issue(f.user)
	require.NoError(t, err)
	f.user.FirstName = "Augusta"

	claims, err := f.issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", claims.Name)
}

func TestIssuer_Verify(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		f := setupIssuerFixture(t)
		_, err := f.issuer.Verify("")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := setupIssuerFixture(t)
		_, err := f.issuer.Verify("not.a.jwt")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupIssuerFixture(t)
		start := time.Now()
		withNow(t, start)
		raw, _, err := f.issuer.Issue(f.user)
		require.NoError(t, err)

		withNow(t, start.Add(2*time.Hour))
		_, err = f.issuer.Verify(raw)
		require.ErrorIs(t, err, errors.ErrTokenExpired)
	})

	t.Run("token from another key", func(t *testing.T) {
		f := setupIssuerFixture(t)
		other := setupIssuerFixture(t)
		raw, _, err := other.issuer.Issue(other.user)
		require.NoError(t, err)

		_, err = f.issuer.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("token from another issuer", func(t *testing.T) {
		kp, err := keys.GenerateRSAKeyPair("test-key", 2048)
		require.NoError(t, err)
		signer := keys.NewKeyPairSigner(kp)
		a := token.NewIssuer(signer, "https://a.example.com", time.Hour, nil)
		b := token.NewIssuer(signer, "https://b.example.com", time.Hour, nil)

		raw, _, err := a.Issue(&users.User{ID: "u1", Email: "x@example.com"})
		require.NoError(t, err)
		_, err = b.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		f := setupIssuerFixture(t)
		raw, _, err := f.issuer.Issue(&users.User{Email: "nobody@example.com"})
		require.NoError(t, err)

		_, err = f.issuer.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}

func TestIssuer_Revoke(t *testing.T) {
	f := setupIssuerFixture(t)

	raw, claims, err := f.issuer.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.issuer.Revoke(claims))
	require.True(t, f.revoked.IsRevoked(claims.ID))

	_, err = f.issuer.Verify(raw)
	require.ErrorIs(t, err, errors.ErrTokenRevoked)

	// A fresh token for the same user is unaffected
	other, _, err := f.issuer.Issue(f.user)
	require.NoError(t, err)
	_, err = f.issuer.Verify(other)
	require.NoError(t, err)
}

func TestInMemoryRevokedTokenCache_Cleanup(t *testing.T) {
	cache := token.NewInMemoryRevokedTokenCache()
	now := time.Now()
	withNow(t, now)

	require.NoError(t, cache.Add("expired", now.Add(-time.Minute)))
	require.NoError(t, cache.Add("live", now.Add(time.Minute)))
	cache.Cleanup()

	require.False(t, cache.IsRevoked("expired"))
	require.True(t, cache.IsRevoked("live"))
	require.Equal(t, 1, cache.Len())
}

func TestStartCleanup(t *testing.T) {
	cache := token.NewInMemoryRevokedTokenCache()
	require.NoError(t, cache.Add("expired", time.Now().Add(-time.Minute)))
	require.NoError(t, cache.Add("live", time.Now().Add(time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// returns at once; the sweep runs in the background
	token.StartCleanup(ctx, cache, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return !cache.IsRevoked("expired")
	}, time.Second, 10*time.Millisecond)
	require.True(t, cache.IsRevoked("live"))
}
