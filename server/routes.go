package server

import (
	"net/http"

	"github.com/jrsteele09/go-dashboard/guard"
	"github.com/jrsteele09/go-dashboard/users"
)

var adminOnly = guard.Chain(guard.Authenticated, guard.RequireRole(users.RoleAdmin))

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHome, s.RootHandler(), s.HTMLMiddleWare()...)

	// SIGN IN / SIGN UP
	s.RegisterRouteFunc("GET "+RouteSignIn, s.SignInPageHandler(), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("POST "+RouteSignIn, s.SignInSubmissionHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...)
	s.RegisterRouteFunc("GET "+RouteSignUp, s.SignUpPageHandler(), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("POST "+RouteSignUp, s.SignUpSubmissionHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...)
	s.RegisterRouteFunc("GET "+RouteSignOut, s.SignOutHandler(), s.HTMLMiddleWare()...)
	if s.oidcEnabled() {
		s.RegisterRouteFunc("GET "+RouteSignInOIDC, s.OIDCSignInHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...)
		s.RegisterRouteFunc("GET "+RouteOIDCCallback, s.OIDCCallbackHandler(), s.HTMLMiddleWare()...)
	}

	// DASHBOARD
	s.RegisterRouteFunc("GET "+RouteMain, s.Guard(guard.Authenticated, pageSurface, s.MainPageHandler()), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("GET "+RouteOrganisation, s.Guard(guard.Authenticated, pageSurface,
		s.WithOrganisation(pageSurface, s.OrganisationPageHandler())), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("GET "+RouteProject, s.Guard(guard.Authenticated, pageSurface,
		s.WithOrganisation(pageSurface, s.WithProject(pageSurface, s.ProjectPageHandler()))), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("GET "+RouteResource, s.Guard(guard.Authenticated, pageSurface,
		s.WithOrganisation(pageSurface, s.WithResource(pageSurface, s.ResourcePageHandler()))), s.HTMLMiddleWare()...)

	// ADMIN
	s.RegisterRouteFunc("GET "+RouteAdmin, s.Guard(adminOnly, pageSurface, s.AdminDashboardHandler()), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("GET "+RouteAdminUsers, s.Guard(adminOnly, pageSurface, s.AdminUsersHandler()), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("GET "+RouteAdminOrganisations, s.Guard(adminOnly, pageSurface, s.AdminOrganisationsHandler()), s.HTMLMiddleWare()...)
	s.RegisterRouteFunc("POST "+RouteAdminOrganisationActive, s.Guard(adminOnly, pageSurface, s.AdminOrganisationActiveHandler()), s.HTMLMiddleWare()...)

	// API
	s.RegisterRouteFunc("OPTIONS /api/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...)
	s.RegisterRouteFunc("GET "+RouteAPISession, s.SessionAPIHandler(), s.APIMiddleware()...)
	s.RegisterRouteFunc("GET "+RouteAPISignOut, s.SignOutAPIHandler(), s.APIMiddleware()...)
	s.RegisterRouteFunc("POST "+RouteAPIOrganisations, s.Guard(guard.Authenticated, apiSurface, s.CreateOrganisationAPIHandler()), s.APIMiddleware()...)
	s.RegisterRouteFunc("PATCH "+RouteAPIOrganisation, s.Guard(guard.Authenticated, apiSurface,
		s.WithOrganisation(apiSurface, s.UpdateOrganisationAPIHandler())), s.APIMiddleware()...)
	s.RegisterRouteFunc("POST "+RouteAPIProjects, s.Guard(guard.Authenticated, apiSurface,
		s.WithOrganisation(apiSurface, s.CreateProjectAPIHandler())), s.APIMiddleware()...)
	s.RegisterRouteFunc("PATCH "+RouteAPIProject, s.Guard(guard.Authenticated, apiSurface,
		s.WithOrganisation(apiSurface, s.WithManagedProject(apiSurface, s.UpdateProjectAPIHandler()))), s.APIMiddleware()...)
	s.RegisterRouteFunc("POST "+RouteAPIResources, s.Guard(guard.Authenticated, apiSurface,
		s.WithOrganisation(apiSurface, s.CreateResourceAPIHandler())), s.APIMiddleware()...)
	s.RegisterRouteFunc("PATCH "+RouteAPIResource, s.Guard(guard.Authenticated, apiSurface,
		s.WithOrganisation(apiSurface, s.WithResource(apiSurface, s.UpdateResourceAPIHandler()))), s.APIMiddleware()...)
	s.RegisterRouteFunc("PUT "+RouteAPIUserRole, s.Guard(adminOnly, apiSurface, s.SetUserRoleAPIHandler()), s.APIMiddleware()...)

	// OPERATIONS
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler(), s.RecoverMiddleware)
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	s.RegisterRouteFunc("GET "+RouteStatic, s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...)
}
