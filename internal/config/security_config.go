package config

import (
	"strings"
	"time"
)

type SecurityConfig interface {
	GetSessionMaxAge() time.Duration
	GetSessionKeyPEM() string
	GetSessionKeyID() string
	GetAdminEmail() string
	GetAdminPassword() string
	GetSignInRatePerSecond() int
	GetSignInRateBurst() int
	GetTrustedProxies() []string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionMaxAge is the lifetime of a session token and its cookie
func (Security) GetSessionMaxAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetSessionKeyPEM returns a PKCS1 RSA private key. When empty a key is generated at
// startup, which invalidates every session on restart.
func (Security) GetSessionKeyPEM() string {
	return GetEnv("SESSION_KEY_PEM", "")
}

func (Security) GetSessionKeyID() string {
	return GetEnv("SESSION_KEY_ID", "session-key-1")
}

func (Security) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "admin@dashboard.local")
}

// GetAdminPassword returns the bootstrap admin password. Empty means one is generated.
func (Security) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

func (Security) GetSignInRatePerSecond() int {
	return GetEnvInt("SIGNIN_RATE_PER_SECOND", 1)
}

func (Security) GetSignInRateBurst() int {
	return GetEnvInt("SIGNIN_RATE_BURST", 5)
}

// GetTrustedProxies lists the proxy addresses or CIDRs whose X-Forwarded-For header is
// believed. Empty means the header is ignored and the peer address is used.
func (Security) GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
