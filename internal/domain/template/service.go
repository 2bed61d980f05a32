package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/storyforge/internal/repository"
)

// Service handles template lookup and seeding.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new template service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Seed upserts the default templates by id.
func (s *Service) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	for _, tpl := range Defaults() {
		tpl.CreatedAt = now
		if err := s.repo.Upsert(ctx, &tpl); err != nil {
			return fmt.Errorf("seeding template %s: %w", tpl.ID, err)
		}
	}
	s.logger.Debug("default templates seeded", "count", len(Defaults()))
	return nil
}

// List returns template summaries, optionally filtered by type.
func (s *Service) List(ctx context.Context, templateType string) ([]Template, error) {
	templates, err := s.repo.List(ctx, templateType)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return templates, nil
}

// Get fetches a template including its body.
func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	tpl, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return tpl, nil
}

// ForType selects the template for a project type: the first template of
// that type, else the default template, else the built-in fallback.
func (s *Service) ForType(ctx context.Context, projectType string) (*Template, error) {
	if projectType != "" {
		candidates, err := s.List(ctx, projectType)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return s.Get(ctx, candidates[0].ID)
		}
	}

	tpl, err := s.Get(ctx, DefaultID)
	if err == nil {
		s.logger.Debug("no template for project type, using default", "type", projectType)
		return tpl, nil
	}
	if !errors.Is(err, ErrTemplateNotFound) {
		return nil, err
	}

	s.logger.Warn("default template missing, using built-in fallback", "type", projectType)
	fallback := Fallback()
	return &fallback, nil
}
