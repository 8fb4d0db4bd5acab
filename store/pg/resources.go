package pg

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/resources"
)

var _ resources.Repo = (*resourceRepo)(nil)

type resourceRepo struct{ db *sql.DB }

const resourceColumns = `id, name, description, type, status, endpoint, organisation_id, owner_id, created_at, updated_at`

func scanResource(row rowScanner) (*resources.Resource, error) {
	var (
		res         resources.Resource
		typ, status string
	)
	if err := row.Scan(&res.ID, &res.Name, &res.Description, &typ, &status, &res.Endpoint, &res.OrganisationID, &res.OwnerID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Type = resources.ResourceType(typ)
	res.Status = resources.Status(status)
	return &res, nil
}

func (r *resourceRepo) Create(ctx context.Context, res *resources.Resource) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		insert into resources (id, name, description, type, status, endpoint, organisation_id, owner_id)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning created_at, updated_at
	`, res.ID, res.Name, res.Description, string(res.Type), string(res.Status), res.Endpoint, res.OrganisationID, res.OwnerID).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	return mapError(err, "resources.Create")
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*resources.Resource, error) {
	res, err := scanResource(r.db.QueryRowContext(ctx, `select `+resourceColumns+` from resources where id = $1`, id))
	if err != nil {
		return nil, mapError(err, "resources.GetByID")
	}
	return res, nil
}

func (r *resourceRepo) ListByOrganisation(ctx context.Context, organisationID string) ([]*resources.Resource, error) {
	rows, err := r.db.QueryContext(ctx, `select `+resourceColumns+` from resources where organisation_id = $1 order by name`, organisationID)
	if err != nil {
		return nil, mapError(err, "resources.ListByOrganisation")
	}
	defer rows.Close()

	list := make([]*resources.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, errors.Upstream(err, "resources.ListByOrganisation")
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Upstream(err, "resources.ListByOrganisation")
	}
	return list, nil
}

func (r *resourceRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from resources`).Scan(&n); err != nil {
		return 0, mapError(err, "resources.Count")
	}
	return n, nil
}

func (r *resourceRepo) Update(ctx context.Context, res *resources.Resource) error {
	err := r.db.QueryRowContext(ctx, `
		update resources
		set name = $1, description = $2, type = $3, status = $4, endpoint = $5, updated_at = now()
		where id = $6
		returning organisation_id, owner_id, created_at, updated_at
	`, res.Name, res.Description, string(res.Type), string(res.Status), res.Endpoint, res.ID).
		Scan(&res.OrganisationID, &res.OwnerID, &res.CreatedAt, &res.UpdatedAt)
	return mapError(err, "resources.Update")
}
