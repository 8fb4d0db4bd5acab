package resources

import "context"

type Repo interface {
	Create(ctx context.Context, resource *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	ListByOrganisation(ctx context.Context, organisationID string) ([]*Resource, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, resource *Resource) error
}
