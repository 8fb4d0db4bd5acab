package pg

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/projects"
)

var _ projects.Repo = (*projectRepo)(nil)

type projectRepo struct{ db *sql.DB }

const projectColumns = `id, name, description, organisation_id, is_active, created_at, updated_at`

func scanProject(row rowScanner) (*projects.Project, error) {
	var p projects.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OrganisationID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) Create(ctx context.Context, p *projects.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		insert into projects (id, name, description, organisation_id, is_active)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, p.ID, p.Name, p.Description, p.OrganisationID, p.IsActive).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapError(err, "projects.Create")
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*projects.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `select `+projectColumns+` from projects where id = $1`, id))
	if err != nil {
		return nil, mapError(err, "projects.GetByID")
	}
	return p, nil
}

func (r *projectRepo) ListByOrganisation(ctx context.Context, organisationID string) ([]*projects.Project, error) {
	rows, err := r.db.QueryContext(ctx, `select `+projectColumns+` from projects where organisation_id = $1 order by name`, organisationID)
	if err != nil {
		return nil, mapError(err, "projects.ListByOrganisation")
	}
	defer rows.Close()

	list := make([]*projects.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Upstream(err, "projects.ListByOrganisation")
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Upstream(err, "projects.ListByOrganisation")
	}
	return list, nil
}

func (r *projectRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from projects`).Scan(&n); err != nil {
		return 0, mapError(err, "projects.Count")
	}
	return n, nil
}

func (r *projectRepo) Update(ctx context.Context, p *projects.Project) error {
	err := r.db.QueryRowContext(ctx, `
		update projects
		set name = $1, description = $2, is_active = $3, updated_at = now()
		where id = $4
		returning organisation_id, created_at, updated_at
	`, p.Name, p.Description, p.IsActive, p.ID).Scan(&p.OrganisationID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err, "projects.Update")
}
