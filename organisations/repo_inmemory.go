package organisations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu      sync.RWMutex
	orgs    map[string]*Organisation
	nameIDs map[string]string // name to organisation id
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		orgs:    make(map[string]*Organisation),
		nameIDs: make(map[string]string),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, org *Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nameIDs[org.Name]; ok {
		return errors.Wrapf(errors.ErrConflict, "organisation %s", org.Name)
	}
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	org.CreatedAt, org.UpdatedAt = now, now

	r.orgs[org.ID] = org.Clone()
	r.nameIDs[org.Name] = org.ID
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id string) (*Organisation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.orgs[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return org.Clone(), nil
}

func (r *InMemoryRepo) GetByName(_ context.Context, name string) (*Organisation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.nameIDs[name]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return r.orgs[id].Clone(), nil
}

func (r *InMemoryRepo) ListByOwner(_ context.Context, ownerID string) ([]*Organisation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Organisation, 0)
	for _, org := range r.orgs {
		if org.OwnerID == ownerID {
			list = append(list, org.Clone())
		}
	}
	sortByName(list)
	return list, nil
}

func (r *InMemoryRepo) List(_ context.Context, offset, limit int) ([]*Organisation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Organisation, 0, len(r.orgs))
	for _, org := range r.orgs {
		list = append(list, org.Clone())
	}
	sortByName(list)
	return utils.Page(list, offset, limit), nil
}

func (r *InMemoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orgs), nil
}

func (r *InMemoryRepo) Update(_ context.Context, org *Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orgs[org.ID]
	if !ok {
		return errors.ErrNotFound
	}
	if existing.Name != org.Name {
		if _, taken := r.nameIDs[org.Name]; taken {
			return errors.Wrapf(errors.ErrConflict, "organisation %s", org.Name)
		}
		delete(r.nameIDs, existing.Name)
		r.nameIDs[org.Name] = org.ID
	}
	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = time.Now().UTC()
	r.orgs[org.ID] = org.Clone()
	return nil
}

func (r *InMemoryRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.orgs[id]
	if !ok {
		return errors.ErrNotFound
	}
	org.IsActive = active
	org.UpdatedAt = time.Now().UTC()
	return nil
}

func sortByName(list []*Organisation) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}
