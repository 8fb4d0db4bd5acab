package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-dashboard/auth"
	"github.com/jrsteele09/go-dashboard/internal/config"
	"github.com/jrsteele09/go-dashboard/internal/obs"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/jrsteele09/go-dashboard/scope"
	"github.com/jrsteele09/go-dashboard/server/authflowrepo"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/users"
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// Repos holds the stores the server reads and writes
type Repos struct {
	Users         users.Repo
	Organisations organisations.Repo
	Projects      projects.Repo
	Resources     resources.Repo
}

// HealthCheck reports whether a backing store is reachable
type HealthCheck func(ctx context.Context) error

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	repos     Repos
	auth      *auth.Service
	resolver  *scope.Resolver
	writer    *scope.Writer
	pages     *Pages
	metrics   *obs.Metrics
	limiter   *ipRateLimiter
	proxies   trustedProxies
	authState authflowrepo.Repo
	health    HealthCheck

	oidcConfig *OidcConfig
	oidcLock   sync.Mutex
}

// Option customises a Server
type Option func(*Server)

// WithHealthCheck makes /healthz report the result of check
func WithHealthCheck(check HealthCheck) Option {
	return func(s *Server) {
		s.health = check
	}
}

// WithMetrics shares a metrics registry instead of creating one
func WithMetrics(m *obs.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithOIDC injects a ready provider configuration, bypassing discovery
func WithOIDC(c *OidcConfig) Option {
	return func(s *Server) {
		s.oidcConfig = c
	}
}

func New(cfg config.Config, repos Repos, issuer *token.Issuer, authStateRepo authflowrepo.Repo, options ...Option) (*Server, error) {
	authService, err := auth.NewService(repos.Users, issuer)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	pages, err := ParsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	proxies, err := parseTrustedProxies(cfg.GetTrustedProxies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid TRUSTED_PROXIES: %w", err)
	}

	resolver := scope.NewResolver(repos.Organisations, repos.Projects, repos.Resources)
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		auth:      authService,
		resolver:  resolver,
		writer:    scope.NewWriter(resolver),
		pages:     pages,
		limiter:   newIPRateLimiter(cfg.GetSignInRatePerSecond(), cfg.GetSignInRateBurst()),
		proxies:   proxies,
		authState: authStateRepo,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = obs.NewMetrics()
	}

	// Bootstrap: ensure an admin user exists
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// RegisterRouteFunc registers handler under pattern with its middleware chain and
// request metrics labelled by the pattern.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, s.metrics.Instrument(pattern, ChainMiddleware(handler, mw...)))
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler, mw ...func(http.HandlerFunc) http.HandlerFunc) {
	s.RegisterRouteFunc(pattern, handler.ServeHTTP, mw...)
}

// Routes returns the registered patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
