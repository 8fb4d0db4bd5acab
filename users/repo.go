package users

import (
	"context"
	"time"
)

// Repo is the Identity Store. Lookups return errors.ErrNotFound on a miss and
// Create returns errors.ErrConflict when the email is taken.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Count(ctx context.Context) (int, error)
	SetRole(ctx context.Context, id string, role RoleType) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
