package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/token/keys"
	"github.com/jrsteele09/go-dashboard/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the minimal identity carried by a session token. Name is fixed at
// issuance and is not refreshed from the Identity Store afterwards.
type Claims struct {
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens
type Issuer struct {
	signer  keys.Signer
	issuer  string
	maxAge  time.Duration
	revoked RevokedTokenCache
}

func NewIssuer(signer keys.Signer, issuer string, maxAge time.Duration, revoked RevokedTokenCache) *Issuer {
	return &Issuer{
		signer:  signer,
		issuer:  issuer,
		maxAge:  maxAge,
		revoked: revoked,
	}
}

func (i *Issuer) MaxAge() time.Duration {
	return i.maxAge
}

// Issue creates a signed session token for user
func (i *Issuer) Issue(user *users.User) (string, *Claims, error) {
	now := NowTimeFunc()
	claims := &Claims{
		Role:  string(user.Role),
		Name:  user.DisplayName(),
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
			ID:        uuid.New().String(),
		},
	}

	raw, err := i.signer.Sign(claims)
	if err != nil {
		return "", nil, errors.Wrapf(err, "sign session token for %s", user.ID)
	}
	return raw, claims, nil
}

// Verify checks signature, issuer, expiry and revocation of a session token
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, i.signer.GetVerificationKey,
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "missing sub or jti")
	}
	if i.revoked != nil && i.revoked.IsRevoked(claims.ID) {
		return nil, errors.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke denies any further use of the token identified by claims
func (i *Issuer) Revoke(claims *Claims) error {
	if i.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}
	exp := NowTimeFunc().Add(i.maxAge)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return i.revoked.Add(claims.ID, exp)
}
