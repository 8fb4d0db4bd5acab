package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/jrsteele09/go-dashboard/palette"
	"github.com/jrsteele09/go-dashboard/sessions"
)

//go:embed templates/*
var templateFiles embed.FS

// page template names
const (
	pageSignIn             = "signin.html"
	pageSignUp             = "signup.html"
	pageMain               = "main.html"
	pageOrganisation       = "organisation.html"
	pageProject            = "project.html"
	pageResource           = "resource.html"
	pageAdminDashboard     = "admin_dashboard.html"
	pageAdminUsers         = "admin_users.html"
	pageAdminOrganisations = "admin_organisations.html"
	pageNotFound           = "not_found.html"
	pageError              = "error.html"
)

var pageNames = []string{
	pageSignIn, pageSignUp, pageMain, pageOrganisation, pageProject, pageResource,
	pageAdminDashboard, pageAdminUsers, pageAdminOrganisations, pageNotFound, pageError,
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// Pages holds every page parsed together with the shared layout
type Pages struct {
	templates map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("2 Jan 2006")
	},
}

// ParsePages parses each page template with layout.html
func ParsePages() (*Pages, error) {
	fsys := TemplateFilesFS()
	p := &Pages{templates: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, "layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// PageData is the model every page renders with. Data carries the page specific values.
type PageData struct {
	AppName         string
	Title           string
	Description     string
	OGImageURL      string
	Path            string
	Session         *sessions.Session
	Palette         palette.State
	PaletteHref     string
	PaletteCommands []palette.Command
	Error           string
	Data            any
}

// render executes page into a buffer first so a template failure never leaves a
// half written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, sess *sessions.Session, data any) {
	s.renderWithError(w, r, status, page, title, sess, "", data)
}

func (s *Server) renderWithError(w http.ResponseWriter, r *http.Request, status int, page, title string, sess *sessions.Session, errMsg string, data any) {
	tmpl, ok := s.pages.templates[page]
	if !ok {
		requestLogger(r).Error().Str("page", page).Msg("unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	state := palette.FromQuery(r.URL.Query())
	model := PageData{
		AppName:         s.config.GetAppName(),
		Title:           title,
		Description:     s.config.GetSiteDescription(),
		OGImageURL:      s.config.GetOGImageURL(),
		Path:            r.URL.Path,
		Session:         sess,
		Palette:         state,
		PaletteHref:     state.ToggleHref(r.URL),
		PaletteCommands: state.Filter(paletteCommands(sess)),
		Error:           errMsg,
		Data:            data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", model); err != nil {
		requestLogger(r).Error().Err(err).Str("page", page).Msg("failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	s.render(w, r, http.StatusNotFound, pageNotFound, "Not found", sess, nil)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, sess *sessions.Session, status int, msg string) {
	s.renderWithError(w, r, status, pageError, http.StatusText(status), sess, msg, nil)
}

// paletteCommands lists the navigation shortcuts available to sess
func paletteCommands(sess *sessions.Session) []palette.Command {
	if !sess.Authenticated() {
		return []palette.Command{
			{Label: "Sign in", Href: RouteSignIn},
			{Label: "Create account", Href: RouteSignUp},
		}
	}
	commands := []palette.Command{
		{Label: "Organisations", Href: RouteMain},
	}
	if sess.IsAdmin() {
		commands = append(commands,
			palette.Command{Label: "Admin dashboard", Href: RouteAdmin},
			palette.Command{Label: "Admin users", Href: RouteAdminUsers},
			palette.Command{Label: "Admin organisations", Href: RouteAdminOrganisations},
		)
	}
	return append(commands, palette.Command{Label: "Sign out", Href: RouteSignOut})
}
