package projects

import "context"

type Repo interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListByOrganisation(ctx context.Context, organisationID string) ([]*Project, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, project *Project) error
}
