package book

import (
	"context"

	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/ratelimit"
)

// Projects is the project store the book service composes.
type Projects interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*project.Statistics, error)
}

// Contents is the content store the book service composes.
type Contents interface {
	Add(ctx context.Context, req content.AddRequest) (*content.Item, error)
	List(ctx context.Context, projectID string) ([]content.Item, error)
}

// Templates resolves document templates.
type Templates interface {
	Get(ctx context.Context, id string) (*template.Template, error)
	ForType(ctx context.Context, projectType string) (*template.Template, error)
}

// Compiler turns filled LaTeX into a PDF.
type Compiler interface {
	Available(ctx context.Context) bool
	Compile(ctx context.Context, req compiler.Request) (string, error)
}

// Artifacts persists generated media.
type Artifacts interface {
	WriteImage(name string, data []byte) (string, error)
	WriteAudio(name string, data []byte) (string, error)
}

// Limiter reports rate limit windows.
type Limiter interface {
	Status(ctx context.Context) (map[string]ratelimit.Status, error)
}
