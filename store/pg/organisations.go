package pg

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/organisations"
)

var _ organisations.Repo = (*organisationRepo)(nil)

type organisationRepo struct{ db *sql.DB }

const organisationColumns = `id, name, description, owner_id, is_active, created_at, updated_at`

func scanOrganisation(row rowScanner) (*organisations.Organisation, error) {
	var o organisations.Organisation
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.OwnerID, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organisationRepo) Create(ctx context.Context, o *organisations.Organisation) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		insert into organisations (id, name, description, owner_id, is_active)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, o.ID, o.Name, o.Description, o.OwnerID, o.IsActive).Scan(&o.CreatedAt, &o.UpdatedAt)
	return mapError(err, "organisations.Create")
}

func (r *organisationRepo) GetByID(ctx context.Context, id string) (*organisations.Organisation, error) {
	o, err := scanOrganisation(r.db.QueryRowContext(ctx, `select `+organisationColumns+` from organisations where id = $1`, id))
	if err != nil {
		return nil, mapError(err, "organisations.GetByID")
	}
	return o, nil
}

func (r *organisationRepo) GetByName(ctx context.Context, name string) (*organisations.Organisation, error) {
	o, err := scanOrganisation(r.db.QueryRowContext(ctx, `select `+organisationColumns+` from organisations where name = $1`, name))
	if err != nil {
		return nil, mapError(err, "organisations.GetByName")
	}
	return o, nil
}

func (r *organisationRepo) ListByOwner(ctx context.Context, ownerID string) ([]*organisations.Organisation, error) {
	return r.query(ctx, "organisations.ListByOwner",
		`select `+organisationColumns+` from organisations where owner_id = $1 order by name`, ownerID)
}

func (r *organisationRepo) List(ctx context.Context, offset, limit int) ([]*organisations.Organisation, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.query(ctx, "organisations.List",
		`select `+organisationColumns+` from organisations order by name limit $1 offset $2`, limit, max(offset, 0))
}

func (r *organisationRepo) query(ctx context.Context, op, query string, args ...any) ([]*organisations.Organisation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	defer rows.Close()

	list := make([]*organisations.Organisation, 0)
	for rows.Next() {
		o, err := scanOrganisation(rows)
		if err != nil {
			return nil, errors.Upstream(err, op)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Upstream(err, op)
	}
	return list, nil
}

func (r *organisationRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from organisations`).Scan(&n); err != nil {
		return 0, mapError(err, "organisations.Count")
	}
	return n, nil
}

func (r *organisationRepo) Update(ctx context.Context, o *organisations.Organisation) error {
	err := r.db.QueryRowContext(ctx, `
		update organisations
		set name = $1, description = $2, updated_at = now()
		where id = $3
		returning created_at, updated_at
	`, o.Name, o.Description, o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
	return mapError(err, "organisations.Update")
}

func (r *organisationRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `update organisations set is_active = $1, updated_at = now() where id = $2`, active, id)
	return expectOneRow(res, err, "organisations.SetActive")
}
