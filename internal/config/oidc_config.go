package config

// OIDCConfig configures the optional "sign in with provider" flow
type OIDCConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	OIDCEnabled() bool
}

type OIDC struct{}

var _ OIDCConfig = OIDC{}

func (OIDC) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (OIDC) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (OIDC) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (o OIDC) OIDCEnabled() bool {
	return o.GetOIDCIssuer() != "" && o.GetOIDCClientID() != ""
}
