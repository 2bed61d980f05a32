package project

import "context"

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, projectType string) ([]Project, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Project, error)
	SoftDelete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*Statistics, error)
}
