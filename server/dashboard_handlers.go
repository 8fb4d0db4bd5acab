package server

import (
	"net/http"

	"github.com/jrsteele09/go-dashboard/scope"
	"github.com/jrsteele09/go-dashboard/sessions"
)

type mainPageData struct {
	Organisations []scope.Organisation
}

type organisationPageData struct {
	Organisation scope.Organisation
	Projects     []scope.Project
	Resources    []scope.Resource
}

// MainPageHandler lists the organisations the signed in user owns (GET /main)
func (s *Server) MainPageHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		orgs, err := s.resolver.OwnedOrganisations(r.Context(), sess.SubjectID)
		if err != nil {
			s.fail(w, r, pageSurface, sess, err)
			return
		}
		s.render(w, r, http.StatusOK, pageMain, "Organisations", sess, mainPageData{Organisations: orgs})
	}
}

// OrganisationPageHandler shows an organisation with its projects and resources
func (s *Server) OrganisationPageHandler() OrganisationHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, org scope.Organisation) {
		projectList, err := s.resolver.Projects(r.Context(), org)
		if err != nil {
			s.fail(w, r, pageSurface, sess, err)
			return
		}
		resourceList, err := s.resolver.Resources(r.Context(), org)
		if err != nil {
			s.fail(w, r, pageSurface, sess, err)
			return
		}
		s.render(w, r, http.StatusOK, pageOrganisation, org.Name(), sess, organisationPageData{
			Organisation: org,
			Projects:     projectList,
			Resources:    resourceList,
		})
	}
}

func (s *Server) ProjectPageHandler() ProjectHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, project scope.Project) {
		s.render(w, r, http.StatusOK, pageProject, project.Name(), sess, struct{ Project scope.Project }{project})
	}
}

func (s *Server) ResourcePageHandler() ResourceHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session, resource scope.Resource) {
		s.render(w, r, http.StatusOK, pageResource, resource.Name(), sess, struct{ Resource scope.Resource }{resource})
	}
}
