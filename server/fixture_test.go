package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-dashboard/internal/config"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/jrsteele09/go-dashboard/server"
	"github.com/jrsteele09/go-dashboard/server/authflowrepo"
	"github.com/jrsteele09/go-dashboard/token"
	"github.com/jrsteele09/go-dashboard/token/keys"
	"github.com/jrsteele09/go-dashboard/users"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin12345"
	alicePassword = "Alice12345"
	bobPassword   = "Bob12345"
)

type testFixture struct {
	ctx       context.Context
	server    *server.Server
	users     *users.InMemoryRepo
	orgs      *organisations.InMemoryRepo
	projects  *projects.InMemoryRepo
	resources *resources.InMemoryRepo
	revoked   *token.InMemoryRevokedTokenCache
	issuer    *token.Issuer
	alice     *users.User
	bob       *users.User
	acme      *organisations.Organisation
}

func setupTestFixture(t *testing.T, options ...server.Option) *testFixture {
	return setupTestFixtureWithEnv(t, nil, options...)
}

// setupTestFixtureWithEnv builds a server on in-memory stores. alice owns the active
// organisation "acme"; bob owns nothing.
func setupTestFixtureWithEnv(t *testing.T, env map[string]string, options ...server.Option) *testFixture {
	t.Helper()

	defaults := map[string]string{
		"ENV":                    "TEST",
		"APP_NAME":               "Test Dashboard",
		"ADMIN_EMAIL":            adminEmail,
		"ADMIN_PASSWORD":         adminPassword,
		"SIGNIN_RATE_PER_SECOND": "1000",
		"SIGNIN_RATE_BURST":      "1000",
		"SITE_DESCRIPTION":       "Organisations at a glance",
		"OG_IMAGE_URL":           "",
		"OIDC_ISSUER":            "",
		"OIDC_CLIENT_ID":         "",
		"CORS_ALLOWED_ORIGINS":   "",
		"TRUSTED_PROXIES":        "",
	}
	for k, v := range env {
		defaults[k] = v
	}
	for k, v := range defaults {
		t.Setenv(k, v)
	}

	f := &testFixture{
		ctx:       context.Background(),
		users:     users.NewInMemoryRepo(),
		orgs:      organisations.NewInMemoryRepo(),
		projects:  projects.NewInMemoryRepo(),
		resources: resources.NewInMemoryRepo(),
		revoked:   token.NewInMemoryRevokedTokenCache(),
	}

	f.alice = f.createUser(t, "alice@example.com", alicePassword, "Alice", "Liddell", users.RoleUser)
	f.bob = f.createUser(t, "bob@example.com", bobPassword, "Bob", "", users.RoleUser)

	f.acme = &organisations.Organisation{Name: "acme", OwnerID: f.alice.ID, IsActive: true}
	require.NoError(t, f.orgs.Create(f.ctx, f.acme))

	kp, err := keys.GenerateRSAKeyPair("test-key", 2048)
	require.NoError(t, err)
	f.issuer = token.NewIssuer(keys.NewKeyPairSigner(kp), "http://dashboard.test", time.Hour, f.revoked)

	repos := server.Repos{
		Users:         f.users,
		Organisations: f.orgs,
		Projects:      f.projects,
		Resources:     f.resources,
	}
	f.server, err = server.New(config.New(), repos, f.issuer, authflowrepo.NewInMemoryRepo(), options...)
	require.NoError(t, err)
	return f
}

func (f *testFixture) createUser(t *testing.T, email, password, first, last string, role users.RoleType) *users.User {
	t.Helper()
	hash, err := users.HashPassword(password)
	require.NoError(t, err)
	u := &users.User{Email: email, PasswordHash: hash, FirstName: first, LastName: last, Role: role}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

// remoteAddr is a pseudo header for do that sets the request's peer address
const remoteAddr = "Remote-Addr"

// do sends a request through the server, attaching the session cookie when set
func (f *testFixture) do(method, target, body string, session *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i] == remoteAddr {
			req.RemoteAddr = headers[i+1]
			continue
		}
		req.Header.Set(headers[i], headers[i+1])
	}
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) get(target string, session *http.Cookie) *httptest.ResponseRecorder {
	return f.do(http.MethodGet, target, "", session)
}

func (f *testFixture) postForm(target string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, target, form.Encode(), session, "Content-Type", "application/x-www-form-urlencoded")
}

func (f *testFixture) sendJSON(method, target, body string, session *http.Cookie) *httptest.ResponseRecorder {
	return f.do(method, target, body, session, "Content-Type", "application/json")
}

// signIn posts the sign-in form and returns the issued session cookie
func (f *testFixture) signIn(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := f.postForm("/signin", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "no session cookie issued")
	return cookie
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	return nil
}
