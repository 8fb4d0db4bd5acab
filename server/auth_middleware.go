package server

import (
	"net/http"

	"github.com/jrsteele09/go-dashboard/guard"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/scope"
	"github.com/jrsteele09/go-dashboard/sessions"
)

// Handlers below the guard receive the session and resolved scope as arguments.
// Nothing is stored on the request context.
type (
	SessionHandler      func(w http.ResponseWriter, r *http.Request, sess *sessions.Session)
	OrganisationHandler func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation)
	ProjectHandler      func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, project scope.Project)
	ResourceHandler     func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, resource scope.Resource)
)

// surface selects how guard and scope failures are answered
type surface int

const (
	pageSurface surface = iota // redirects and HTML error pages
	apiSurface                 // JSON status codes
)

// currentSession reads the session for r. Verification failures and Identity Store
// outages both yield nil; the latter is logged.
func (s *Server) currentSession(r *http.Request) *sessions.Session {
	raw := sessionToken(r)
	if raw == "" {
		return nil
	}
	sess, err := s.auth.CurrentSession(r.Context(), raw)
	if err != nil {
		if errors.Is(err, errors.ErrUpstream) {
			requestLogger(r).Error().Err(err).Msg("session enrichment failed, treating request as signed out")
		}
		return nil
	}
	return sess
}

// Guard evaluates policy against the request session and only calls next on Allow
func (s *Server) Guard(policy guard.Policy, on surface, next SessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		outcome := guard.Evaluate(policy, sess)
		s.metrics.ObserveGuard(outcome.String())

		switch outcome {
		case guard.Allow:
			next(w, r, sess)
		case guard.Unauthenticated:
			s.denyUnauthenticated(w, r, on)
		default:
			s.denyUnauthorized(w, r, on)
		}
	}
}

func (s *Server) denyUnauthenticated(w http.ResponseWriter, r *http.Request, on surface) {
	if on == apiSurface {
		writeJSONError(w, "unauthenticated", "sign in required", http.StatusUnauthorized)
		return
	}
	redirectSuccess(w, r, signInRedirectPath(r))
}

func (s *Server) denyUnauthorized(w http.ResponseWriter, r *http.Request, on surface) {
	if on == apiSurface {
		writeJSONError(w, "forbidden", "not permitted", http.StatusForbidden)
		return
	}
	redirectSuccess(w, r, RouteMain)
}

// fail answers a scope or store error. Not-found is terminal and renders without
// any partially resolved context.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, on surface, sess *sessions.Session, err error) {
	if on == apiSurface {
		writeAPIError(w, r, err)
		return
	}
	switch {
	case errors.Is(err, errors.ErrNotFound):
		s.renderNotFound(w, r, sess)
	case errors.Is(err, errors.ErrUnauthorized):
		s.denyUnauthorized(w, r, on)
	default:
		requestLogger(r).Error().Err(err).Str("path", r.URL.Path).Msg("page request failed")
		s.renderError(w, r, sess, http.StatusInternalServerError, "Something went wrong")
	}
}

// WithOrganisation resolves the {name} path segment before calling next. Callers
// who may not access the organisation see the same not-found answer as for a
// missing one, so names of other organisations are not disclosed.
func (s *Server) WithOrganisation(on surface, next OrganisationHandler) SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		name := r.PathValue("name")
		org, err := s.resolver.Organisation(r.Context(), name)
		if err != nil {
			s.fail(w, r, on, sess, err)
			return
		}
		if !canAccess(sess, org) {
			s.metrics.ObserveGuard(guard.Unauthorized.String())
			s.fail(w, r, on, sess, errors.Wrapf(errors.ErrNotFound, "organisation %s", name))
			return
		}
		next(w, r, sess, org)
	}
}

// WithProject resolves the {id} path segment as a project of org
func (s *Server) WithProject(on surface, next ProjectHandler) OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation) {
		project, err := s.resolver.Project(r.Context(), org, r.PathValue("id"))
		if err != nil {
			s.fail(w, r, on, sess, err)
			return
		}
		next(w, r, sess, project)
	}
}

// WithManagedProject is WithProject for the update route, where inactive projects
// must stay reachable to be reactivated
func (s *Server) WithManagedProject(on surface, next ProjectHandler) OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation) {
		project, err := s.resolver.ManagedProject(r.Context(), org, r.PathValue("id"))
		if err != nil {
			s.fail(w, r, on, sess, err)
			return
		}
		next(w, r, sess, project)
	}
}

// WithResource resolves the {id} path segment as a resource of org
func (s *Server) WithResource(on surface, next ResourceHandler) OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation) {
		resource, err := s.resolver.Resource(r.Context(), org, r.PathValue("id"))
		if err != nil {
			s.fail(w, r, on, sess, err)
			return
		}
		next(w, r, sess, resource)
	}
}

// canAccess allows the organisation owner and any ADMIN
func canAccess(sess *sessions.Session, org scope.Organisation) bool {
	return sess.Authenticated() && (sess.IsAdmin() || org.IsOwnedBy(sess.SubjectID))
}
