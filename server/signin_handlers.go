package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-dashboard/auth"
	"github.com/jrsteele09/go-dashboard/internal/errors"
)

// SignInPageData contains data for rendering the sign-in page
type SignInPageData struct {
	CallbackURL string
	Email       string // Preserve email on error
	OIDCEnabled bool
}

// SignUpPageData preserves the non-secret fields of a rejected registration
type SignUpPageData struct {
	Email     string
	FirstName string
	LastName  string
}

// RootHandler sends the bare domain to the dashboard
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteHome {
			s.renderNotFound(w, r, s.currentSession(r))
			return
		}
		http.Redirect(w, r, RouteMain, http.StatusSeeOther)
	}
}

// SignInPageHandler displays the sign-in form (GET /signin)
func (s *Server) SignInPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callback := auth.SafeCallbackURL(r.URL.Query().Get(callbackURLParam), defaultCallbackPath)
		if sess := s.currentSession(r); sess.Authenticated() {
			redirectSuccess(w, r, callback)
			return
		}

		data := SignInPageData{
			CallbackURL: callback,
			Email:       r.URL.Query().Get("email"),
			OIDCEnabled: s.oidcEnabled(),
		}
		s.renderWithError(w, r, http.StatusOK, pageSignIn, "Sign in", nil, r.URL.Query().Get("error"), data)
	}
}

// SignInSubmissionHandler processes the sign-in form (POST /signin)
func (s *Server) SignInSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		callback := auth.SafeCallbackURL(r.FormValue(callbackURLParam), defaultCallbackPath)
		data := SignInPageData{CallbackURL: callback, Email: email, OIDCEnabled: s.oidcEnabled()}

		creds, err := s.auth.SignIn(r.Context(), email, password)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidCredentials) {
				s.renderWithError(w, r, http.StatusUnauthorized, pageSignIn, "Sign in", nil, "Invalid email or password", data)
				return
			}
			requestLogger(r).Error().Err(err).Msg("sign in failed")
			s.renderWithError(w, r, http.StatusInternalServerError, pageSignIn, "Sign in", nil, "Sign in is unavailable, try again shortly", data)
			return
		}

		s.setSessionCookie(w, r, creds)
		redirectSuccess(w, r, callback)
	}
}

// SignUpPageHandler renders the registration form (GET /signup)
func (s *Server) SignUpPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := s.currentSession(r); sess.Authenticated() {
			redirectSuccess(w, r, RouteMain)
			return
		}
		s.render(w, r, http.StatusOK, pageSignUp, "Create account", nil, SignUpPageData{})
	}
}

// SignUpSubmissionHandler creates a USER account and signs it in (POST /signup)
func (s *Server) SignUpSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		input := auth.SignUpInput{
			Email:           strings.TrimSpace(r.FormValue("email")),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
			FirstName:       r.FormValue("first_name"),
			LastName:        r.FormValue("last_name"),
		}
		data := SignUpPageData{Email: input.Email, FirstName: input.FirstName, LastName: input.LastName}

		creds, err := s.auth.SignUp(r.Context(), input)
		switch {
		case err == nil:
			s.setSessionCookie(w, r, creds)
			redirectSuccess(w, r, RouteMain)
		case errors.Is(err, errors.ErrConflict):
			s.renderWithError(w, r, http.StatusConflict, pageSignUp, "Create account", nil, "An account with that email already exists", data)
		case errors.Is(err, errors.ErrInvalidInput):
			s.renderWithError(w, r, http.StatusBadRequest, pageSignUp, "Create account", nil, signUpMessage(err), data)
		default:
			requestLogger(r).Error().Err(err).Msg("sign up failed")
			s.renderWithError(w, r, http.StatusInternalServerError, pageSignUp, "Create account", nil, "Sign up is unavailable, try again shortly", data)
		}
	}
}

// signUpMessage strips the sentinel suffix so the form shows only the rule that failed
func signUpMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+errors.ErrInvalidInput.Error())
	if msg == "" {
		return "Invalid registration details"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// SignOutHandler revokes the session token, clears the cookie and returns to sign-in
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.SignOut(r.Context(), sessionToken(r)); err != nil {
			requestLogger(r).Error().Err(err).Msg("failed to revoke session token")
		}
		s.clearSessionCookie(w, r)
		redirectSuccess(w, r, RouteSignIn)
	}
}
