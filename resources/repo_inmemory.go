package resources

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
	mu        sync.RWMutex
	resources map[string]*Resource
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		resources: make(map[string]*Resource),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, resource *Resource) error {
	if resource.OrganisationID == "" || resource.OwnerID == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "resource %s needs an organisation and an owner", resource.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	resource.CreatedAt, resource.UpdatedAt = now, now
	r.resources[resource.ID] = resource.Clone()
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id string) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return resource.Clone(), nil
}

func (r *InMemoryRepo) ListByOrganisation(_ context.Context, organisationID string) ([]*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Resource, 0)
	for _, res := range r.resources {
		if res.OrganisationID == organisationID {
			list = append(list, res.Clone())
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
	return len(r.resources), nil
}

// Update never moves a resource to another organisation or owner
func (r *InMemoryRepo) Update(_ context.Context, resource *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.resources[resource.ID]
	if !ok {
		return errors.ErrNotFound
	}
	resource.OrganisationID = existing.OrganisationID
	resource.OwnerID = existing.OwnerID
	resource.CreatedAt = existing.CreatedAt
	resource.UpdatedAt = time.Now().UTC()
	r.resources[resource.ID] = resource.Clone()
	return nil
}
