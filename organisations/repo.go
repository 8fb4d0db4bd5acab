package organisations

import "context"

// Repo persists organisations. Lookups return errors.ErrNotFound on a miss regardless
// of IsActive; filtering inactive organisations is the caller's decision.
type Repo interface {
	Create(ctx context.Context, org *Organisation) error
	GetByID(ctx context.Context, id string) (*Organisation, error)
	GetByName(ctx context.Context, name string) (*Organisation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Organisation, error)
	List(ctx context.Context, offset, limit int) ([]*Organisation, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, org *Organisation) error
	SetActive(ctx context.Context, id string, active bool) error
}
