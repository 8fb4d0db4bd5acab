package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/users"
)

var _ users.Repo = (*userRepo)(nil)

type userRepo struct{ db *sql.DB }

const userColumns = `id, email, password_hash, first_name, last_name, role, image, date_joined, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	var (
		u         users.User
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.Image, &u.DateJoined, &lastLogin); err != nil {
		return nil, err
	}
	u.Role = users.RoleType(role)
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *users.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = users.NormaliseEmail(u.Email)
	err := r.db.QueryRowContext(ctx, `
		insert into users (id, email, password_hash, first_name, last_name, role, image)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning date_joined
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.Image).Scan(&u.DateJoined)
	return mapError(err, "users.Create")
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id))
	if err != nil {
		return nil, mapError(err, "users.GetByID")
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, users.NormaliseEmail(email)))
	if err != nil {
		return nil, mapError(err, "users.GetByEmail")
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `select `+userColumns+` from users order by email limit $1 offset $2`, limit, max(offset, 0))
	if err != nil {
		return nil, mapError(err, "users.List")
	}
	defer rows.Close()

	list := make([]*users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Upstream(err, "users.List")
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Upstream(err, "users.List")
	}
	return list, nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&n); err != nil {
		return 0, mapError(err, "users.Count")
	}
	return n, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role users.RoleType) error {
	res, err := r.db.ExecContext(ctx, `update users set role = $1 where id = $2`, string(role), id)
	return expectOneRow(res, err, "users.SetRole")
}

func (r *userRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `update users set last_login = $1 where id = $2`, at, id)
	return expectOneRow(res, err, "users.SetLastLogin")
}
