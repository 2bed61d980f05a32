package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/storyforge/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name     string
	Type     string
	Settings Settings
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	Name     *string
	Type     *string
	Status   *Status
	Settings *Settings
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return r.Name == nil && r.Type == nil && r.Status == nil && r.Settings == nil
}

// Create creates a new active project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Type) == "" {
		return nil, ErrInvalidInput
	}

	settings := req.Settings
	if settings == nil {
		settings = Settings{}
	}

	now := time.Now().UTC()
	proj := &Project{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      req.Type,
		Settings:  settings,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created", "project_id", proj.ID, "type", proj.Type)
	return proj, nil
}

// Get fetches a project by ID regardless of status.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns active projects, most recently updated first. An empty
// projectType returns every type.
func (s *Service) List(ctx context.Context, projectType string) ([]Project, error) {
	projects, err := s.repo.List(ctx, projectType)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Update applies a partial update and stamps updated_at.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if req.Type != nil && strings.TrimSpace(*req.Type) == "" {
		return nil, ErrInvalidInput
	}
	if req.Status != nil && *req.Status != StatusActive && *req.Status != StatusDeleted {
		return nil, ErrInvalidInput
	}
	if req.Empty() {
		return s.Get(ctx, id)
	}

	proj, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return proj, nil
}

// Delete marks the project deleted. Content rows and artifact files are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// Statistics returns counts of active projects and stored content.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting statistics: %w", err)
	}
	return stats, nil
}
