package template

import "context"

// Repository provides persistence for templates. List omits template bodies.
type Repository interface {
	List(ctx context.Context, templateType string) ([]Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	Upsert(ctx context.Context, tpl *Template) error
}
