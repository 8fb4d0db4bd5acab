package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/sessions"
	"github.com/jrsteele09/go-dashboard/users"
)

const adminPageSize = 25

// Pager describes one page of an admin listing
type Pager struct {
	Offset int
	Limit  int
	Total  int
}

func newPager(r *http.Request, total int) Pager {
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Pager{Offset: offset, Limit: adminPageSize, Total: total}
}

func (p Pager) HasPrev() bool   { return p.Offset > 0 }
func (p Pager) HasNext() bool   { return p.Offset+p.Limit < p.Total }
func (p Pager) NextOffset() int { return p.Offset + p.Limit }

func (p Pager) PrevOffset() int {
	return max(p.Offset-p.Limit, 0)
}

// From is the 1-based index of the first row shown, 0 when the page is empty
func (p Pager) From() int {
	if p.Offset >= p.Total {
		return 0
	}
	return p.Offset + 1
}

func (p Pager) To() int {
	return min(p.Offset+p.Limit, p.Total)
}

type adminDashboardData struct {
	Users         int
	Organisations int
	Projects      int
	Resources     int
}

// AdminDashboardHandler shows store totals (GET /admin)
func (s *Server) AdminDashboardHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		ctx := r.Context()
		var (
			data adminDashboardData
			err  error
		)
		if data.Users, err = s.repos.Users.Count(ctx); err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count users"))
			return
		}
		if data.Organisations, err = s.repos.Organisations.Count(ctx); err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count organisations"))
			return
		}
		if data.Projects, err = s.repos.Projects.Count(ctx); err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count projects"))
			return
		}
		if data.Resources, err = s.repos.Resources.Count(ctx); err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count resources"))
			return
		}
		s.render(w, r, http.StatusOK, pageAdminDashboard, "Admin", sess, data)
	}
}

// AdminUsersHandler lists users a page at a time (GET /admin/users)
func (s *Server) AdminUsersHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		total, err := s.repos.Users.Count(r.Context())
		if err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count users"))
			return
		}
		pager := newPager(r, total)
		list, err := s.repos.Users.List(r.Context(), pager.Offset, pager.Limit)
		if err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "list users"))
			return
		}
		s.render(w, r, http.StatusOK, pageAdminUsers, "Users", sess, struct {
			Users []*users.User
			Pager Pager
		}{list, pager})
	}
}

// AdminOrganisationsHandler lists every organisation, inactive ones included
func (s *Server) AdminOrganisationsHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		total, err := s.repos.Organisations.Count(r.Context())
		if err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "count organisations"))
			return
		}
		pager := newPager(r, total)
		list, err := s.repos.Organisations.List(r.Context(), pager.Offset, pager.Limit)
		if err != nil {
			s.fail(w, r, pageSurface, sess, errors.Wrapf(err, "list organisations"))
			return
		}
		s.render(w, r, http.StatusOK, pageAdminOrganisations, "Organisations", sess, struct {
			Organisations []*organisations.Organisation
			Pager         Pager
		}{list, pager})
	}
}

// AdminOrganisationActiveHandler activates or deactivates an organisation from the
// admin list form (POST /admin/organisations/{name}/active)
func (s *Server) AdminOrganisationActiveHandler() SessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		active, err := strconv.ParseBool(r.FormValue("active"))
		if err != nil {
			http.Error(w, "active must be true or false", http.StatusBadRequest)
			return
		}

		name := r.PathValue("name")
		org, err := s.writer.SetOrganisationActive(r.Context(), name, active)
		if err != nil {
			s.fail(w, r, pageSurface, sess, err)
			return
		}
		requestLogger(r).Info().
			Str("organisation", org.Name).
			Bool("active", org.IsActive).
			Str("admin", sess.SubjectID).
			Msg("organisation status changed")
		redirectSuccess(w, r, RouteAdminOrganisations)
	}
}
