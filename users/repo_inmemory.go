package users

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

// InMemoryRepo is a thread-safe Identity Store used when no database is configured
type InMemoryRepo struct {
	mu       sync.RWMutex
	users    map[string]*User
	emailIDs map[string]string // email to user id
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		users:    make(map[string]*User),
		emailIDs: make(map[string]string),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := NormaliseEmail(user.Email)
	if _, ok := r.emailIDs[email]; ok {
		return errors.Wrapf(errors.ErrConflict, "user %s", email)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	user.Email = email

	r.users[user.ID] = user.Clone()
	r.emailIDs[email] = user.ID
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *InMemoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emailIDs[NormaliseEmail(email)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return r.users[id].Clone(), nil
}

func (r *InMemoryRepo) List(_ context.Context, offset, limit int) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		list = append(list, u.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Email < list[j].Email
	})
	return utils.Page(list, offset, limit), nil
}

func (r *InMemoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *InMemoryRepo) SetRole(_ context.Context, id string, role RoleType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.ErrNotFound
	}
	user.Role = role
	return nil
}

func (r *InMemoryRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return errors.ErrNotFound
	}
	user.LastLogin = at
	return nil
}
