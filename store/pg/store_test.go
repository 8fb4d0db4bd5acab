package pg_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/jrsteele09/go-dashboard/store/pg"
	"github.com/jrsteele09/go-dashboard/users"
)

var (
	userCols         = []string{"id", "email", "password_hash", "first_name", "last_name", "role", "image", "date_joined", "last_login"}
	organisationCols = []string{"id", "name", "description", "owner_id", "is_active", "created_at", "updated_at"}
	projectCols      = []string{"id", "name", "description", "organisation_id", "is_active", "created_at", "updated_at"}
	resourceCols     = []string{"id", "name", "description", "type", "status", "endpoint", "organisation_id", "owner_id", "created_at", "updated_at"}
)

func newMockStore(t *testing.T) (*pg.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return pg.New(db), mock
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("create table if not exists users").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("get by id without image", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, email").WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "ada@example.com", "hash", "Ada", "Lovelace", "ADMIN", nil, joined, nil))

		u, err := store.Users().GetByID(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, users.RoleAdmin, u.Role)
		require.Nil(t, u.Image)
		require.True(t, u.LastLogin.IsZero())
		require.Equal(t, joined, u.DateJoined)
	})

	t.Run("get by email with image", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, email").WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "ada@example.com", "hash", "Ada", "", "USER", "https://img/ada.png", joined, joined))

		u, err := store.Users().GetByEmail(ctx, " ADA@example.com")
		require.NoError(t, err)
		require.Equal(t, "https://img/ada.png", utils.Value(u.Image))
		require.Equal(t, joined, u.LastLogin)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, email").WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := store.Users().GetByID(ctx, "nope")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("driver failure is upstream", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, email").WithArgs("u1").WillReturnError(stderrors.New("connection reset"))

		_, err := store.Users().GetByID(ctx, "u1")
		require.ErrorIs(t, err, errors.ErrUpstream)
	})

	t.Run("create conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("insert into users").
			WithArgs(sqlmock.AnyArg(), "ada@example.com", "hash", "Ada", "Lovelace", "USER", sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := store.Users().Create(ctx, &users.User{Email: "Ada@example.com", PasswordHash: "hash", FirstName: "Ada", LastName: "Lovelace", Role: users.RoleUser})
		require.ErrorIs(t, err, errors.ErrConflict)
	})

	t.Run("create", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("insert into users").
			WithArgs(sqlmock.AnyArg(), "ada@example.com", "hash", "Ada", "Lovelace", "USER", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"date_joined"}).AddRow(joined))

		u := &users.User{Email: "ada@example.com", PasswordHash: "hash", FirstName: "Ada", LastName: "Lovelace", Role: users.RoleUser}
		require.NoError(t, store.Users().Create(ctx, u))
		require.NotEmpty(t, u.ID)
		require.Equal(t, joined, u.DateJoined)
	})

	t.Run("set role on missing user", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("update users set role").WithArgs("ADMIN", "nope").WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Users().SetRole(ctx, "nope", users.RoleAdmin)
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`select count\(\*\) from users`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		n, err := store.Users().Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})
}

func TestOrganisations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("get by name", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, name, description, owner_id").WithArgs("acme").
			WillReturnRows(sqlmock.NewRows(organisationCols).AddRow("o1", "acme", "Widgets", "u1", false, now, now))

		org, err := store.Organisations().GetByName(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, "Widgets", utils.Value(org.Description))
		require.False(t, org.IsActive)
	})

	t.Run("list by owner", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, name, description, owner_id").WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(organisationCols).
				AddRow("o1", "acme", nil, "u1", true, now, now).
				AddRow("o2", "beta", nil, "u1", true, now, now))

		list, err := store.Organisations().ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Nil(t, list[0].Description)
	})

	t.Run("create with missing owner", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("insert into organisations").
			WithArgs(sqlmock.AnyArg(), "acme", sqlmock.AnyArg(), "ghost", true).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := store.Organisations().Create(ctx, &organisations.Organisation{Name: "acme", OwnerID: "ghost", IsActive: true})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("update missing", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("update organisations").WithArgs("acme", sqlmock.AnyArg(), "o9").WillReturnError(sql.ErrNoRows)

		err := store.Organisations().Update(ctx, &organisations.Organisation{ID: "o9", Name: "acme"})
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("set active", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("update organisations set is_active").WithArgs(false, "o1").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Organisations().SetActive(ctx, "o1", false))
	})
}

func TestProjectsAndResources(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("project update returns organisation", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("update projects").WithArgs("web", sqlmock.AnyArg(), true, "p1").
			WillReturnRows(sqlmock.NewRows([]string{"organisation_id", "created_at", "updated_at"}).AddRow("o1", now, now))

		p := &projects.Project{ID: "p1", Name: "web", IsActive: true, OrganisationID: "other"}
		require.NoError(t, store.Projects().Update(ctx, p))
		require.Equal(t, "o1", p.OrganisationID)
	})

	t.Run("project list", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, name, description, organisation_id").WithArgs("o1").
			WillReturnRows(sqlmock.NewRows(projectCols).AddRow("p1", "web", nil, "o1", true, now, now))

		list, err := store.Projects().ListByOrganisation(ctx, "o1")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("resource get", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("select id, name, description, type, status").WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(resourceCols).AddRow("r1", "db", nil, "DATABASE", "ACTIVE", "postgres://db", "o1", "u1", now, now))

		res, err := store.Resources().GetByID(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, resources.TypeDatabase, res.Type)
		require.Equal(t, resources.StatusActive, res.Status)
		require.Equal(t, "postgres://db", utils.Value(res.Endpoint))
	})

	t.Run("resource create", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("insert into resources").
			WithArgs(sqlmock.AnyArg(), "db", sqlmock.AnyArg(), "DATABASE", "PROVISIONING", sqlmock.AnyArg(), "o1", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		res := &resources.Resource{Name: "db", Type: resources.TypeDatabase, Status: resources.StatusProvisioning, OrganisationID: "o1", OwnerID: "u1"}
		require.NoError(t, store.Resources().Create(ctx, res))
		require.Equal(t, now, res.CreatedAt)
	})
}
