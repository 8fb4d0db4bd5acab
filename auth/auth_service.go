package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/users"
)

// SignUpInput is the registration form
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// Credentials is the result of a successful sign-in, ready to be set as a cookie
type Credentials struct {
	Token     string
	ExpiresAt time.Time
	User      *users.User
}

// Service is the authentication surface used by the HTTP layer
type Service struct {
	users     users.Repo
	issuer    *token.Issuer
	enricher  *sessions.Enricher
	validator *Validator
	nowTime   func() time.Time // nowTime function (injectable for testing)

	checkPassword func(password, hash string) bool
}

// dummyPasswordHash is compared against when an email is unknown so that sign-in
// costs one bcrypt comparison whether or not the account exists.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := users.HashPassword("unknown-account-placeholder")
	if err != nil {
		log.Error().Err(err).Msg("failed to hash the placeholder password")
	}
	return hash
})

// WithPasswordCheck replaces the bcrypt comparison (primarily for testing)
func WithPasswordCheck(check func(password, hash string) bool) ServiceOption {
	return func(s *Service) {
		s.checkPassword = check
	}
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(usersRepo users.Repo, issuer *token.Issuer, options ...ServiceOption) (*Service, error) {
	if usersRepo == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "[NewService] users repo is required")
	}
	if issuer == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "[NewService] token issuer is required")
	}

	s := &Service{
		users:     usersRepo,
		issuer:    issuer,
		enricher:  sessions.NewEnricher(usersRepo),
		validator: NewValidator(),
		nowTime:   time.Now,

		checkPassword: users.CheckPasswordHash,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Validator exposes the form rules to handlers that render field errors
func (s *Service) Validator() *Validator {
	return s.validator
}

// CurrentSession verifies rawToken and enriches it. Any token problem is reported
// as ErrUnauthenticated; Identity Store failures come back as ErrUpstream.
func (s *Service) CurrentSession(ctx context.Context, rawToken string) (*sessions.Session, error) {
	if rawToken == "" {
		return nil, errors.ErrUnauthenticated
	}
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "%v", err)
	}
	return s.enricher.Enrich(ctx, claims)
}

// SignIn checks email and password and issues a session token
func (s *Service) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	if err := s.validator.ValidateUserCredentials(email, password); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidCredentials, "%v", err)
	}

	user, err := s.users.GetByEmail(ctx, users.NormaliseEmail(email))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			s.checkPassword(password, dummyPasswordHash())
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.Wrapf(err, "[SignIn] lookup")
	}
	if user.PasswordHash == "" {
		s.checkPassword(password, dummyPasswordHash())
		return nil, errors.ErrInvalidCredentials
	}
	if !s.checkPassword(password, user.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	return s.SignInUser(ctx, user)
}

// SignInUser issues a session token for a user already authenticated some other
// way, such as an external OIDC provider.
func (s *Service) SignInUser(ctx context.Context, user *users.User) (*Credentials, error) {
	raw, claims, err := s.issuer.Issue(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[SignInUser] issue")
	}

	if err := s.users.SetLastLogin(ctx, user.ID, s.nowTime().UTC()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	return &Credentials{
		Token:     raw,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// SignUp registers a USER and signs them in
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Credentials, error) {
	if err := s.validator.ValidateSignUp(in); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%v", err)
	}

	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrapf(err, "[SignUp] hash password")
	}

	user := &users.User{
		Email:        users.NormaliseEmail(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         users.RoleUser,
		DateJoined:   s.nowTime().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.Wrapf(err, "[SignUp] create %s", user.Email)
	}
	return s.SignInUser(ctx, user)
}

// SignOut revokes rawToken. Tokens that no longer verify are already unusable so
// signing out with one is not an error.
func (s *Service) SignOut(_ context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil
	}
	return s.issuer.Revoke(claims)
}

// SetRole changes a user's role. Only an ADMIN session may do this, and an admin
// cannot demote themselves.
func (s *Service) SetRole(ctx context.Context, actor *sessions.Session, userID string, role users.RoleType) (*users.User, error) {
	if !actor.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, errors.ErrUnauthorized
	}
	if !role.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown role %q", role)
	}
	if actor.SubjectID == userID && role != users.RoleAdmin {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot remove your own admin role")
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return nil, errors.Wrapf(err, "[SetRole] %s", userID)
	}
	return s.users.GetByID(ctx, userID)
}
