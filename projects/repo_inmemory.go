package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-dashboard/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		projects: make(map[string]*Project),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, project *Project) error {
	if project.OrganisationID == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "project %s has no organisation", project.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now
	r.projects[project.ID] = project.Clone()
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, ok := r.projects[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return project.Clone(), nil
}

func (r *InMemoryRepo) ListByOrganisation(_ context.Context, organisationID string) ([]*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Project, 0)
	for _, p := range r.projects {
		if p.OrganisationID == organisationID {
			list = append(list, p.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *InMemoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects), nil
}

// Update never moves a project to another organisation
func (r *InMemoryRepo) Update(_ context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.projects[project.ID]
	if !ok {
		return errors.ErrNotFound
	}
	project.OrganisationID = existing.OrganisationID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()
	r.projects[project.ID] = project.Clone()
	return nil
}
