package content

import "context"

// Repository provides persistence for content items. Writes stamp the
// owning project's updated_at.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	ListByProject(ctx context.Context, projectID string) ([]Item, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Item, error)
	Delete(ctx context.Context, id string) error
}
