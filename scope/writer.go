package scope

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
)

// OrganisationInput carries optional changes; nil fields are left untouched
type OrganisationInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ResourceInput struct {
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Type        *resources.ResourceType `json:"type,omitempty"`
	Status      *resources.Status       `json:"status,omitempty"`
	Endpoint    *string                 `json:"endpoint,omitempty"`
}

// Writer applies mutations. Every update re-resolves its target from the store
// first, so a value resolved earlier in the request is never written back blindly,
// and returns a freshly resolved value afterwards.
type Writer struct {
	resolver  *Resolver
	orgs      organisations.Repo
	projects  projects.Repo
	resources resources.Repo
}

func NewWriter(resolver *Resolver) *Writer {
	return &Writer{
		resolver:  resolver,
		orgs:      resolver.orgs,
		projects:  resolver.projects,
		resources: resolver.resources,
	}
}

func cleanName(name *string) (string, error) {
	n := strings.TrimSpace(utils.Value(name))
	if n == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "name is required")
	}
	return n, nil
}

// CreateOrganisation creates an active organisation owned by ownerID
func (w *Writer) CreateOrganisation(ctx context.Context, ownerID string, in OrganisationInput) (Organisation, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return Organisation{}, err
	}
	if err := organisations.ValidateName(name); err != nil {
		return Organisation{}, errors.Wrapf(errors.ErrInvalidInput, "%v", err)
	}
	if ownerID == "" {
		return Organisation{}, errors.Wrapf(errors.ErrInvalidInput, "owner is required")
	}

	org := &organisations.Organisation{
		Name:        name,
		Description: utils.NonEmptyPtr(strings.TrimSpace(utils.Value(in.Description))),
		OwnerID:     ownerID,
		IsActive:    true,
	}
	if err := w.orgs.Create(ctx, org); err != nil {
		return Organisation{}, errors.Wrapf(err, "create organisation %s", name)
	}
	return w.resolver.organisationByID(ctx, org.ID)
}

// UpdateOrganisation applies in to the current stored state of org
func (w *Writer) UpdateOrganisation(ctx context.Context, org Organisation, in OrganisationInput) (Organisation, error) {
	current, err := w.orgs.GetByID(ctx, org.ID())
	if err != nil {
		return Organisation{}, errors.Wrapf(err, "organisation %s", org.Name())
	}
	if !current.IsActive {
		return Organisation{}, errors.Wrapf(errors.ErrNotFound, "organisation %s is inactive", current.Name)
	}

	if in.Name != nil {
		name, err := cleanName(in.Name)
		if err != nil {
			return Organisation{}, err
		}
		if err := organisations.ValidateName(name); err != nil {
			return Organisation{}, errors.Wrapf(errors.ErrInvalidInput, "%v", err)
		}
		current.Name = name
	}
	if in.Description != nil {
		current.Description = utils.NonEmptyPtr(strings.TrimSpace(*in.Description))
	}

	if err := w.orgs.Update(ctx, current); err != nil {
		return Organisation{}, errors.Wrapf(err, "update organisation %s", org.Name())
	}
	return w.resolver.organisationByID(ctx, current.ID)
}

// SetOrganisationActive is the admin switch. It works on inactive organisations,
// which the Resolver would refuse to return.
func (w *Writer) SetOrganisationActive(ctx context.Context, name string, active bool) (*organisations.Organisation, error) {
	org, err := w.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "organisation %s", name)
	}
	if err := w.orgs.SetActive(ctx, org.ID, active); err != nil {
		return nil, errors.Wrapf(err, "set organisation %s active=%t", name, active)
	}
	return w.orgs.GetByID(ctx, org.ID)
}

func (w *Writer) CreateProject(ctx context.Context, org Organisation, in ProjectInput) (Project, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return Project{}, err
	}
	fresh, err := w.resolver.organisationByID(ctx, org.ID())
	if err != nil {
		return Project{}, err
	}

	p := &projects.Project{
		Name:           name,
		Description:    utils.NonEmptyPtr(strings.TrimSpace(utils.Value(in.Description))),
		OrganisationID: fresh.ID(),
		IsActive:       true,
	}
	if err := w.projects.Create(ctx, p); err != nil {
		return Project{}, errors.Wrapf(err, "create project %s", name)
	}
	return w.resolver.Project(ctx, fresh, p.ID)
}

// UpdateProject re-resolves the project within its organisation before writing.
// Deactivating a project removes it from route resolution; inactive projects can
// still be updated and reactivated here.
func (w *Writer) UpdateProject(ctx context.Context, project Project, in ProjectInput) (Project, error) {
	fresh, err := w.resolver.organisationByID(ctx, project.Organisation().ID())
	if err != nil {
		return Project{}, err
	}
	if _, err := w.resolver.ManagedProject(ctx, fresh, project.ID()); err != nil {
		return Project{}, err
	}
	current, err := w.projects.GetByID(ctx, project.ID())
	if err != nil {
		return Project{}, errors.Wrapf(err, "project %s", project.ID())
	}

	if in.Name != nil {
		name, err := cleanName(in.Name)
		if err != nil {
			return Project{}, err
		}
		current.Name = name
	}
	if in.Description != nil {
		current.Description = utils.NonEmptyPtr(strings.TrimSpace(*in.Description))
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}

	if err := w.projects.Update(ctx, current); err != nil {
		return Project{}, errors.Wrapf(err, "update project %s", project.ID())
	}
	updated, err := w.projects.GetByID(ctx, current.ID)
	if err != nil {
		return Project{}, errors.Wrapf(err, "project %s", current.ID)
	}
	return newProject(fresh, updated), nil
}

func (w *Writer) CreateResource(ctx context.Context, org Organisation, ownerID string, in ResourceInput) (Resource, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return Resource{}, err
	}
	fresh, err := w.resolver.organisationByID(ctx, org.ID())
	if err != nil {
		return Resource{}, err
	}

	res := &resources.Resource{
		Name:           name,
		Description:    utils.NonEmptyPtr(strings.TrimSpace(utils.Value(in.Description))),
		Type:           resources.TypeOther,
		Status:         resources.StatusProvisioning,
		Endpoint:       utils.NonEmptyPtr(strings.TrimSpace(utils.Value(in.Endpoint))),
		OrganisationID: fresh.ID(),
		OwnerID:        ownerID,
	}
	if in.Type != nil {
		res.Type = *in.Type
	}
	if in.Status != nil {
		res.Status = *in.Status
	}
	if err := validateResource(res); err != nil {
		return Resource{}, err
	}

	if err := w.resources.Create(ctx, res); err != nil {
		return Resource{}, errors.Wrapf(err, "create resource %s", name)
	}
	return w.resolver.Resource(ctx, fresh, res.ID)
}

func (w *Writer) UpdateResource(ctx context.Context, resource Resource, in ResourceInput) (Resource, error) {
	fresh, err := w.resolver.organisationByID(ctx, resource.Organisation().ID())
	if err != nil {
		return Resource{}, err
	}
	if _, err := w.resolver.Resource(ctx, fresh, resource.ID()); err != nil {
		return Resource{}, err
	}
	current, err := w.resources.GetByID(ctx, resource.ID())
	if err != nil {
		return Resource{}, errors.Wrapf(err, "resource %s", resource.ID())
	}

	if in.Name != nil {
		name, err := cleanName(in.Name)
		if err != nil {
			return Resource{}, err
		}
		current.Name = name
	}
	if in.Description != nil {
		current.Description = utils.NonEmptyPtr(strings.TrimSpace(*in.Description))
	}
	if in.Type != nil {
		current.Type = *in.Type
	}
	if in.Status != nil {
		current.Status = *in.Status
	}
	if in.Endpoint != nil {
		current.Endpoint = utils.NonEmptyPtr(strings.TrimSpace(*in.Endpoint))
	}
	if err := validateResource(current); err != nil {
		return Resource{}, err
	}

	if err := w.resources.Update(ctx, current); err != nil {
		return Resource{}, errors.Wrapf(err, "update resource %s", resource.ID())
	}
	return w.resolver.Resource(ctx, fresh, current.ID)
}

func validateResource(res *resources.Resource) error {
	if err := resources.ValidateType(res.Type); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%v", err)
	}
	if err := resources.ValidateStatus(res.Status); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%v", err)
	}
	return nil
}
