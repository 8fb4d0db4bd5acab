package server

import (
	"net/http"

	"github.com/jrsteele09/go-dashboard/auth"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/scope"
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/users"
)

// SessionAPIHandler returns the current session as JSON, or 401 when there is none
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		if !sess.Authenticated() {
			writeJSONError(w, "unauthenticated", "no active session", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// SignOutAPIHandler revokes the session. A relative callbackUrl turns the response
// into a redirect, otherwise the caller gets a JSON acknowledgement.
func (s *Server) SignOutAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.SignOut(r.Context(), sessionToken(r)); err != nil {
			writeAPIError(w, r, errors.Upstream(err, "sign out"))
			return
		}
		s.clearSessionCookie(w, r)

		if callback := auth.SafeCallbackURL(r.URL.Query().Get(callbackURLParam), ""); callback != "" {
			http.Redirect(w, r, callback, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
	}
}

// CreateOrganisationAPIHandler creates an organisation owned by the caller
func (s *Server) CreateOrganisationAPIHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		var in scope.OrganisationInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		org, err := s.writer.CreateOrganisation(r.Context(), sess.SubjectID, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, org.Entity())
	}
}

func (s *Server) UpdateOrganisationAPIHandler() OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, _ *sessions.Session, org scope.Organisation) {
		var in scope.OrganisationInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		updated, err := s.writer.UpdateOrganisation(r.Context(), org, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated.Entity())
	}
}

func (s *Server) CreateProjectAPIHandler() OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, _ *sessions.Session, org scope.Organisation) {
		var in scope.ProjectInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		project, err := s.writer.CreateProject(r.Context(), org, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, project.Entity())
	}
}

func (s *Server) UpdateProjectAPIHandler() ProjectHandler {
	return func(w http.ResponseWriter, r *http.Request, _ *sessions.Session, project scope.Project) {
		var in scope.ProjectInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		updated, err := s.writer.UpdateProject(r.Context(), project, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated.Entity())
	}
}

// CreateResourceAPIHandler creates a resource in org owned by the caller
func (s *Server) CreateResourceAPIHandler() OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation) {
		var in scope.ResourceInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		resource, err := s.writer.CreateResource(r.Context(), org, sess.SubjectID, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resource.Entity())
	}
}

func (s *Server) UpdateResourceAPIHandler() ResourceHandler {
	return func(w http.ResponseWriter, r *http.Request, _ *sessions.Session, resource scope.Resource) {
		var in scope.ResourceInput
		if err := decodeJSON(r, &in); err != nil {
			writeAPIError(w, r, err)
			return
		}
		updated, err := s.writer.UpdateResource(r.Context(), resource, in)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated.Entity())
	}
}

type roleRequest struct {
	Role users.RoleType `json:"role"`
}

// SetUserRoleAPIHandler changes another user's role (PUT /api/admin/users/{id}/role)
func (s *Server) SetUserRoleAPIHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		var req roleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeAPIError(w, r, err)
			return
		}
		user, err := s.auth.SetRole(r.Context(), sess, r.PathValue("id"), req.Role)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		requestLogger(r).Info().
			Str("user", user.ID).
			Str("role", string(user.Role)).
			Str("admin", sess.SubjectID).
			Msg("user role changed")
		writeJSON(w, http.StatusOK, user)
	}
}

// HealthHandler reports liveness and, when configured, store reachability
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			if err := s.health(r.Context()); err != nil {
				requestLogger(r).Error().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
