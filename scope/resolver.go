package scope

import (
	"context"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
)

// Resolver loads the organisation, project and resource named by a route once so
// that descendant handlers never look them up again.
type Resolver struct {
	orgs      organisations.Repo
	projects  projects.Repo
	resources resources.Repo
}

func NewResolver(orgs organisations.Repo, projects projects.Repo, resources resources.Repo) *Resolver {
	return &Resolver{
		orgs:      orgs,
		projects:  projects,
		resources: resources,
	}
}

// Organisation resolves an active organisation by its unique name. Missing and
// inactive organisations both return errors.ErrNotFound.
func (r *Resolver) Organisation(ctx context.Context, name string) (Organisation, error) {
	if name == "" {
		return Organisation{}, errors.ErrNotFound
	}
	org, err := r.orgs.GetByName(ctx, name)
	if err != nil {
		return Organisation{}, errors.Wrapf(err, "organisation %s", name)
	}
	if !org.IsActive {
		return Organisation{}, errors.Wrapf(errors.ErrNotFound, "organisation %s is inactive", name)
	}
	return newOrganisation(org), nil
}

func (r *Resolver) organisationByID(ctx context.Context, id string) (Organisation, error) {
	org, err := r.orgs.GetByID(ctx, id)
	if err != nil {
		return Organisation{}, errors.Wrapf(err, "organisation %s", id)
	}
	if !org.IsActive {
		return Organisation{}, errors.Wrapf(errors.ErrNotFound, "organisation %s is inactive", org.Name)
	}
	return newOrganisation(org), nil
}

// Project resolves an active project that belongs to org
func (r *Resolver) Project(ctx context.Context, org Organisation, id string) (Project, error) {
	p, err := r.ManagedProject(ctx, org, id)
	if err != nil {
		return Project{}, err
	}
	if !p.IsActive() {
		return Project{}, errors.Wrapf(errors.ErrNotFound, "project %s in %s is inactive", id, org.Name())
	}
	return p, nil
}

// ManagedProject resolves a project of org whether or not it is active. Only the
// update path uses it, so that a deactivated project can be switched back on.
func (r *Resolver) ManagedProject(ctx context.Context, org Organisation, id string) (Project, error) {
	if org.IsZero() || id == "" {
		return Project{}, errors.ErrNotFound
	}
	p, err := r.projects.GetByID(ctx, id)
	if err != nil {
		return Project{}, errors.Wrapf(err, "project %s", id)
	}
	if p.OrganisationID != org.ID() {
		return Project{}, errors.Wrapf(errors.ErrNotFound, "project %s in %s", id, org.Name())
	}
	return newProject(org, p), nil
}

// Resource resolves a resource that belongs to org
func (r *Resolver) Resource(ctx context.Context, org Organisation, id string) (Resource, error) {
	if org.IsZero() || id == "" {
		return Resource{}, errors.ErrNotFound
	}
	res, err := r.resources.GetByID(ctx, id)
	if err != nil {
		return Resource{}, errors.Wrapf(err, "resource %s", id)
	}
	if res.OrganisationID != org.ID() {
		return Resource{}, errors.Wrapf(errors.ErrNotFound, "resource %s in %s", id, org.Name())
	}
	return newResource(org, res), nil
}

// OwnedOrganisations lists the active organisations owned by userID
func (r *Resolver) OwnedOrganisations(ctx context.Context, userID string) ([]Organisation, error) {
	list, err := r.orgs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "organisations owned by %s", userID)
	}
	out := make([]Organisation, 0, len(list))
	for _, org := range list {
		if org.IsActive {
			out = append(out, newOrganisation(org))
		}
	}
	return out, nil
}

// Projects lists the active projects of org
func (r *Resolver) Projects(ctx context.Context, org Organisation) ([]Project, error) {
	list, err := r.projects.ListByOrganisation(ctx, org.ID())
	if err != nil {
		return nil, errors.Wrapf(err, "projects of %s", org.Name())
	}
	out := make([]Project, 0, len(list))
	for _, p := range list {
		if p.IsActive {
			out = append(out, newProject(org, p))
		}
	}
	return out, nil
}

// Resources lists the resources of org
func (r *Resolver) Resources(ctx context.Context, org Organisation) ([]Resource, error) {
	list, err := r.resources.ListByOrganisation(ctx, org.ID())
	if err != nil {
		return nil, errors.Wrapf(err, "resources of %s", org.Name())
	}
	out := make([]Resource, 0, len(list))
	for _, res := range list {
		out = append(out, newResource(org, res))
	}
	return out, nil
}
