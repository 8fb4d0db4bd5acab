package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-dashboard/auth"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/token/keys"
	"github.com/jrsteele09/go-dashboard/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserID       = "user-1"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123"
	testIssuer       = "http://localhost:8080"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// testFixture holds all test dependencies
type testFixture struct {
	ctx      context.Context
	userRepo *users.InMemoryRepo
	service  *auth.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	kp, err := keys.GenerateRSAKeyPair("test-key", 2048)
	require.NoError(t, err)
	issuer := token.NewIssuer(keys.NewKeyPairSigner(kp), testIssuer, time.Hour, token.NewInMemoryRevokedTokenCache())

	f := &testFixture{
		ctx:      context.Background(),
		userRepo: users.NewInMemoryRepo(),
	}
	f.service, err = auth.NewService(f.userRepo, issuer, auth.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	hash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Create(f.ctx, &users.User{
		ID:           testUserID,
		Email:        testUserEmail,
		PasswordHash: hash,
		FirstName:    "John",
		LastName:     "Doe",
		Role:         users.RoleUser,
	}))
	return f
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(nil, nil)
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestSignIn(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		creds, err := f.service.SignIn(f.ctx, "  John.Doe@Example.com ", testUserPassword)
		require.NoError(t, err)
		require.NotEmpty(t, creds.Token)
		require.Equal(t, testUserID, creds.User.ID)
		require.True(t, creds.ExpiresAt.After(time.Now()))

		stored, err := f.userRepo.GetByID(f.ctx, testUserID)
		require.NoError(t, err)
		require.Equal(t, fixedNow, stored.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.SignIn(f.ctx, testUserEmail, "Wrong1234")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.SignIn(f.ctx, "nobody@example.com", testUserPassword)
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.service.SignIn(f.ctx, "", "")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("account without password", func(t *testing.T) {
		require.NoError(t, f.userRepo.Create(f.ctx, &users.User{Email: "oidc@example.com", Role: users.RoleUser}))
		_, err := f.service.SignIn(f.ctx, "oidc@example.com", "Anything1")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})
}

func TestSignIn_ComparesPasswordForEveryAccount(t *testing.T) {
	kp, err := keys.GenerateRSAKeyPair("test-key", 2048)
	require.NoError(t, err)
	issuer := token.NewIssuer(keys.NewKeyPairSigner(kp), testIssuer, time.Hour, token.NewInMemoryRevokedTokenCache())

	var compared []string
	repo := users.NewInMemoryRepo()
	service, err := auth.NewService(repo, issuer, auth.WithPasswordCheck(func(password, hash string) bool {
		compared = append(compared, hash)
		return users.CheckPasswordHash(password, hash)
	}))
	require.NoError(t, err)

	hash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &users.User{Email: testUserEmail, PasswordHash: hash, Role: users.RoleUser}))
	require.NoError(t, repo.Create(context.Background(), &users.User{Email: "oidc@example.com", Role: users.RoleUser}))

	t.Run("known email", func(t *testing.T) {
		compared = nil
		_, err := service.SignIn(context.Background(), testUserEmail, "Wrong1234")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
		require.Equal(t, []string{hash}, compared)
	})

	t.Run("unknown email", func(t *testing.T) {
		compared = nil
		_, err := service.SignIn(context.Background(), "nobody@example.com", testUserPassword)
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
		require.Len(t, compared, 1)
		require.NotEqual(t, hash, compared[0])
		require.NotEmpty(t, compared[0])
	})

	t.Run("account without password", func(t *testing.T) {
		compared = nil
		_, err := service.SignIn(context.Background(), "oidc@example.com", testUserPassword)
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
		require.Len(t, compared, 1)
	})
}

func TestCurrentSession(t *testing.T) {
	f := setupTestFixture(t)
	creds, err := f.service.SignIn(f.ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	sess, err := f.service.CurrentSession(f.ctx, creds.Token)
	require.NoError(t, err)
	require.Equal(t, testUserID, sess.SubjectID)
	require.Equal(t, "John Doe", sess.DisplayName)
	require.Equal(t, "USER", sess.RoleString())

	_, err = f.service.CurrentSession(f.ctx, "")
	require.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = f.service.CurrentSession(f.ctx, "garbage")
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestSignOut(t *testing.T) {
	f := setupTestFixture(t)
	creds, err := f.service.SignIn(f.ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(f.ctx, creds.Token))
	_, err = f.service.CurrentSession(f.ctx, creds.Token)
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
	require.ErrorIs(t, err, errors.ErrTokenRevoked)

	// Signing out twice, or with nothing, is harmless
	require.NoError(t, f.service.SignOut(f.ctx, creds.Token))
	require.NoError(t, f.service.SignOut(f.ctx, ""))
}

func TestSignUp(t *testing.T) {
	f := setupTestFixture(t)

	input := auth.SignUpInput{
		Email:           "Jane@Example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		FirstName:       " Jane ",
		LastName:        "Roe",
	}
	creds, err := f.service.SignUp(f.ctx, input)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", creds.User.Email)
	require.Equal(t, users.RoleUser, creds.User.Role)
	require.Equal(t, "Jane", creds.User.FirstName)

	sess, err := f.service.CurrentSession(f.ctx, creds.Token)
	require.NoError(t, err)
	require.Equal(t, "Jane Roe", sess.DisplayName)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.service.SignUp(f.ctx, input)
		require.ErrorIs(t, err, errors.ErrConflict)
	})

	t.Run("weak password", func(t *testing.T) {
		weak := input
		weak.Email = "weak@example.com"
		weak.Password, weak.ConfirmPassword = "password", "password"
		_, err := f.service.SignUp(f.ctx, weak)
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		bad := input
		bad.Email = "mismatch@example.com"
		bad.ConfirmPassword = "Secret124"
		_, err := f.service.SignUp(f.ctx, bad)
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Contains(t, err.Error(), "do not match")
	})
}

func TestSetRole(t *testing.T) {
	f := setupTestFixture(t)
	admin := &sessions.Session{SubjectID: "admin-1", Role: utils.Ptr(users.RoleAdmin)}
	member := &sessions.Session{SubjectID: testUserID, Role: utils.Ptr(users.RoleUser)}

	t.Run("admin promotes user", func(t *testing.T) {
		user, err := f.service.SetRole(f.ctx, admin, testUserID, users.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, users.RoleAdmin, user.Role)
	})

	t.Run("non admin refused", func(t *testing.T) {
		_, err := f.service.SetRole(f.ctx, member, testUserID, users.RoleAdmin)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("no session", func(t *testing.T) {
		_, err := f.service.SetRole(f.ctx, nil, testUserID, users.RoleAdmin)
		require.ErrorIs(t, err, errors.ErrUnauthenticated)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.service.SetRole(f.ctx, admin, testUserID, users.RoleType("OWNER"))
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("self demotion", func(t *testing.T) {
		_, err := f.service.SetRole(f.ctx, admin, "admin-1", users.RoleUser)
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.service.SetRole(f.ctx, admin, "ghost", users.RoleUser)
		require.ErrorIs(t, err, errors.ErrNotFound)
	})
}
