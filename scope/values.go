package scope

import (
	"time"

	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/jrsteele09/go-dashboard/projects"
	"github.com/jrsteele09/go-dashboard/resources"
)

// Organisation is a resolved, active organisation. Values are immutable; handlers
// receive them as arguments and cannot change what a sibling handler sees.
type Organisation struct {
	org organisations.Organisation
}

func newOrganisation(org *organisations.Organisation) Organisation {
	return Organisation{org: *org.Clone()}
}

func (o Organisation) ID() string           { return o.org.ID }
func (o Organisation) Name() string         { return o.org.Name }
func (o Organisation) Description() string  { return utils.Value(o.org.Description) }
func (o Organisation) OwnerID() string      { return o.org.OwnerID }
func (o Organisation) CreatedAt() time.Time { return o.org.CreatedAt }
func (o Organisation) UpdatedAt() time.Time { return o.org.UpdatedAt }

// IsZero reports whether o was never resolved
func (o Organisation) IsZero() bool { return o.org.ID == "" }

func (o Organisation) IsOwnedBy(userID string) bool {
	return userID != "" && o.org.OwnerID == userID
}

// Entity returns a copy of the underlying record, used for JSON responses
func (o Organisation) Entity() *organisations.Organisation {
	return o.org.Clone()
}

// Project is a resolved project together with its organisation
type Project struct {
	project projects.Project
	org     Organisation
}

func newProject(org Organisation, p *projects.Project) Project {
	return Project{project: *p.Clone(), org: org}
}

func (p Project) ID() string                 { return p.project.ID }
func (p Project) Name() string               { return p.project.Name }
func (p Project) Description() string        { return utils.Value(p.project.Description) }
func (p Project) Organisation() Organisation { return p.org }
func (p Project) IsActive() bool             { return p.project.IsActive }
func (p Project) CreatedAt() time.Time       { return p.project.CreatedAt }
func (p Project) UpdatedAt() time.Time       { return p.project.UpdatedAt }

func (p Project) Entity() *projects.Project {
	return p.project.Clone()
}

// Resource is a resolved resource together with its organisation
type Resource struct {
	resource resources.Resource
	org      Organisation
}

func newResource(org Organisation, r *resources.Resource) Resource {
	return Resource{resource: *r.Clone(), org: org}
}

func (r Resource) ID() string                   { return r.resource.ID }
func (r Resource) Name() string                 { return r.resource.Name }
func (r Resource) Description() string          { return utils.Value(r.resource.Description) }
func (r Resource) Type() resources.ResourceType { return r.resource.Type }
func (r Resource) Status() resources.Status     { return r.resource.Status }
func (r Resource) Endpoint() string             { return utils.Value(r.resource.Endpoint) }
func (r Resource) OwnerID() string              { return r.resource.OwnerID }
func (r Resource) Organisation() Organisation   { return r.org }
func (r Resource) CreatedAt() time.Time         { return r.resource.CreatedAt }
func (r Resource) UpdatedAt() time.Time         { return r.resource.UpdatedAt }

func (r Resource) Entity() *resources.Resource {
	return r.resource.Clone()
}
