package authflowrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-dashboard/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*AuthFlowState
	now    func() time.Time
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*AuthFlowState),
		now:    time.Now,
	}
}

// Upsert stores an auth flow state and drops any that have expired
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "state cannot be empty")
	}
	if authState == nil {
		return errors.Wrapf(errors.ErrInvalidInput, "authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, v := range r.states {
		if v.Expired(now) {
			delete(r.states, k)
		}
	}

	// Create a copy to prevent external modifications
	stored := *authState
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	r.states[state] = &stored
	return nil
}

func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, errors.Wrapf(errors.ErrNotFound, "auth flow state")
	}
	delete(r.states, state)
	if authState.Expired(r.now()) {
		return nil, errors.Wrapf(errors.ErrNotFound, "auth flow state expired")
	}

	taken := *authState
	return &taken, nil
}

// Delete removes an auth flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

// Len reports the number of pending flows
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
