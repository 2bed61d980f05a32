package content

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

// Service handles content operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new content service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// AddRequest defines content creation inputs.
type AddRequest struct {
	ProjectID  string
	Type       Type
	Text       string
	ImagePath  string
	AudioPath  string
	OrderIndex int
	Metadata   Metadata
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	Text       *string
	ImagePath  *string
	AudioPath  *string
	OrderIndex *int
	Metadata   *Metadata
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return r.Text == nil && r.ImagePath == nil && r.AudioPath == nil && r.OrderIndex == nil && r.Metadata == nil
}

// Add stores a new content item.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Item, error) {
	if err := validateAdd(req); err != nil {
		return nil, err
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = Metadata{}
	}

	item := &Item{
		ID:         uuid.NewString(),
		ProjectID:  req.ProjectID,
		Type:       req.Type,
		Text:       req.Text,
		ImagePath:  req.ImagePath,
		AudioPath:  req.AudioPath,
		OrderIndex: req.OrderIndex,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("adding content: %w", err)
	}

	s.logger.Debug("content added", "project_id", item.ProjectID, "content_id", item.ID, "type", item.Type, "order_index", item.OrderIndex)
	return item, nil
}

// Get fetches a single content item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("getting content: %w", err)
	}
	return item, nil
}

// List returns a project's items ordered by order index, then creation time.
func (s *Service) List(ctx context.Context, projectID string) ([]Item, error) {
	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	return items, nil
}

// Update applies a partial update to a content item. The patched item must
// still carry only the fields its type allows.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Item, error) {
	if req.OrderIndex != nil && *req.OrderIndex < 0 {
		return nil, ErrInvalidInput
	}
	if req.Empty() {
		return s.Get(ctx, id)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patched := *current
	if req.Text != nil {
		patched.Text = *req.Text
	}
	if req.ImagePath != nil {
		patched.ImagePath = *req.ImagePath
	}
	if req.AudioPath != nil {
		patched.AudioPath = *req.AudioPath
	}
	if err := validateFields(patched.Type, patched.Text, patched.ImagePath, patched.AudioPath); err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("updating content: %w", err)
	}
	return item, nil
}

// Delete removes a content item. The referenced file, if any, is left on disk.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("deleting content: %w", err)
	}
	return nil
}

func validateAdd(req AddRequest) error {
	if strings.TrimSpace(req.ProjectID) == "" || req.OrderIndex < 0 {
		return ErrInvalidInput
	}
	return validateFields(req.Type, req.Text, req.ImagePath, req.AudioPath)
}

// validateFields checks that an item of type t sets its required field and
// nothing belonging to another type. Audio keeps an optional transcript.
func validateFields(t Type, text, imagePath, audioPath string) error {
	switch t {
	case TypeText:
		if strings.TrimSpace(text) == "" || imagePath != "" || audioPath != "" {
			return ErrInvalidInput
		}
	case TypeImage:
		if strings.TrimSpace(imagePath) == "" || text != "" || audioPath != "" {
			return ErrInvalidInput
		}
	case TypeAudio:
		if strings.TrimSpace(audioPath) == "" || imagePath != "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}
