package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/"

	// Auth Routes - Sign in & Sign out
	RouteSignIn         = "/signin"
	RouteSignUp         = "/signup"
	RouteSignOut        = "/signout"
	RouteSignInOIDC     = "/signin/oidc"
	RouteOIDCCallback   = "/signin/oidc/callback"
	callbackURLParam    = "callbackUrl"
	defaultCallbackPath = RouteMain

	// Dashboard Routes
	RouteMain         = "/main"
	RouteOrganisation = "/main/organisations/{name}"
	RouteProject      = "/main/organisations/{name}/projects/{id}"
	RouteResource     = "/main/organisations/{name}/resources/{id}"

	// Admin Routes
	RouteAdmin                   = "/admin"
	RouteAdminUsers              = "/admin/users"
	RouteAdminOrganisations      = "/admin/organisations"
	RouteAdminOrganisationActive = "/admin/organisations/{name}/active"

	// API Routes
	RouteAPISession       = "/api/auth/session"
	RouteAPISignOut       = "/api/auth/signout"
	RouteAPIOrganisations = "/api/organisations"
	RouteAPIOrganisation  = "/api/organisations/{name}"
	RouteAPIProjects      = "/api/organisations/{name}/projects"
	RouteAPIProject       = "/api/organisations/{name}/projects/{id}"
	RouteAPIResources     = "/api/organisations/{name}/resources"
	RouteAPIResource      = "/api/organisations/{name}/resources/{id}"
	RouteAPIUserRole      = "/api/admin/users/{id}/role"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file}"
)
