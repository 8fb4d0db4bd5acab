package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-dashboard/auth"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/server/authflowrepo"
)

// oidcEnabled reports whether external sign-in is offered
func (s *Server) oidcEnabled() bool {
	return s.oidcConfig != nil || s.config.OIDCEnabled()
}

// getOidcConfig returns the provider configuration, running discovery on first use
func (s *Server) getOidcConfig(ctx context.Context) (*OidcConfig, error) {
	s.oidcLock.Lock()
	defer s.oidcLock.Unlock()

	if s.oidcConfig != nil {
		return s.oidcConfig, nil
	}
	if !s.config.OIDCEnabled() {
		return nil, errors.Wrapf(errors.ErrUnsupported, "oidc sign-in is not configured")
	}

	provider, err := oidc.NewProvider(ctx, s.config.GetOIDCIssuer())
	if err != nil {
		return nil, errors.Upstream(err, "oidc discovery")
	}
	clientID := s.config.GetOIDCClientID()
	s.oidcConfig = &OidcConfig{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: s.config.GetOIDCClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  s.config.GetBaseURL() + RouteOIDCCallback,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}
	return s.oidcConfig, nil
}

// OIDCSignInHandler starts the authorization code flow with PKCE (GET /signin/oidc)
func (s *Server) OIDCSignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			s.oidcFailed(w, r, err)
			return
		}

		state := generateRandomString(32)
		flow := &authflowrepo.AuthFlowState{
			CodeVerifier: oauth2.GenerateVerifier(),
			Nonce:        generateRandomString(32),
			CallbackURL:  auth.SafeCallbackURL(r.URL.Query().Get(callbackURLParam), defaultCallbackPath),
			CreatedAt:    time.Now(),
		}
		if err := s.authState.Upsert(state, flow); err != nil {
			s.oidcFailed(w, r, fmt.Errorf("store auth state: %w", err))
			return
		}

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oauth2.S256ChallengeOption(flow.CodeVerifier),
			oidc.Nonce(flow.Nonce),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OIDCCallbackHandler completes the code flow and signs in the user whose verified
// email matches an existing account (GET /signin/oidc/callback)
func (s *Server) OIDCCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errorParam := query.Get("error"); errorParam != "" {
			requestLogger(r).Warn().Str("error", errorParam).Str("description", query.Get("error_description")).Msg("oidc provider returned an error")
			s.signInFailed(w, r, "External sign in was cancelled or refused")
			return
		}

		code, state := query.Get("code"), query.Get("state")
		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		flow, err := s.authState.Take(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			s.oidcFailed(w, r, err)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(r.Context(), code, oauth2.VerifierOption(flow.CodeVerifier))
		if err != nil {
			s.oidcFailed(w, r, errors.Upstream(err, "oidc code exchange"))
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			s.oidcFailed(w, r, fmt.Errorf("no id_token in token response"))
			return
		}
		idToken, err := oidcConfig.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			requestLogger(r).Warn().Err(err).Msg("id token verification failed")
			s.signInFailed(w, r, "External sign in could not be verified")
			return
		}

		var claims struct {
			Email         string `json:"email"`
			EmailVerified *bool  `json:"email_verified"`
		}
		if err := idToken.Claims(&claims); err != nil {
			s.oidcFailed(w, r, fmt.Errorf("decode id token claims: %w", err))
			return
		}
		if idToken.Nonce != flow.Nonce {
			requestLogger(r).Warn().Msg("id token nonce mismatch")
			s.signInFailed(w, r, "External sign in could not be verified")
			return
		}
		if claims.Email == "" || (claims.EmailVerified != nil && !*claims.EmailVerified) {
			s.signInFailed(w, r, "Your external account has no verified email address")
			return
		}

		user, err := s.repos.Users.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				s.signInFailed(w, r, "No account is registered for "+claims.Email)
				return
			}
			s.oidcFailed(w, r, errors.Upstream(err, "oidc user lookup"))
			return
		}

		creds, err := s.auth.SignInUser(r.Context(), user)
		if err != nil {
			s.oidcFailed(w, r, err)
			return
		}
		s.setSessionCookie(w, r, creds)
		redirectSuccess(w, r, flow.CallbackURL)
	}
}

// signInFailed sends the browser back to the sign-in form with a message
func (s *Server) signInFailed(w http.ResponseWriter, r *http.Request, msg string) {
	s.renderWithError(w, r, http.StatusUnauthorized, pageSignIn, "Sign in", nil, msg, SignInPageData{
		CallbackURL: defaultCallbackPath,
		OIDCEnabled: s.oidcEnabled(),
	})
}

func (s *Server) oidcFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errors.ErrUnsupported) {
		s.renderNotFound(w, r, nil)
		return
	}
	requestLogger(r).Error().Err(err).Msg("oidc sign in failed")
	s.renderError(w, r, nil, http.StatusBadGateway, "External sign in is unavailable")
}
