package pg

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/jrsteele09/go-dashboard/users"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

//go:embed schema.sql
var schemaSQL string

// Store is the relational backend for the Identity Store and the
// organisation / project / resource hierarchy.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates any missing tables. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Upstream(err, "pg.Migrate")
	}
	return nil
}

func (s *Store) Users() users.Repo                 { return &userRepo{db: s.db} }
func (s *Store) Organisations() organisations.Repo { return &organisationRepo{db: s.db} }
func (s *Store) Projects() projects.Repo           { return &projectRepo{db: s.db} }
func (s *Store) Resources() resources.Repo         { return &resourceRepo{db: s.db} }

// mapError turns driver errors into the domain taxonomy
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return errors.Wrapf(errors.ErrConflict, "%s", op)
		case pgErrForeignKeyViolation:
			return errors.Wrapf(errors.ErrInvalidInput, "%s: missing parent row", op)
		}
	}
	return errors.Upstream(err, op)
}

// expectOneRow converts a zero row update into ErrNotFound
func expectOneRow(res sql.Result, err error, op string) error {
	if err != nil {
		return mapError(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Upstream(err, op)
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}
