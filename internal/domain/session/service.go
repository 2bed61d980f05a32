package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/storyforge/internal/repository"
)

// Service tracks session activity.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new session service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Touch creates the session if needed and refreshes its last access time.
// Data replaces the stored session data when non-nil.
func (s *Service) Touch(ctx context.Context, id string, data map[string]any) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	now := s.now().UTC()
	if err := s.repo.Touch(ctx, &Session{ID: id, Data: data, CreatedAt: now, LastAccessed: now}); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// Get fetches a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// Cleanup deletes sessions idle for longer than maxAge and returns how many
// were removed.
func (s *Service) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, ErrInvalidInput
	}
	removed, err := s.repo.DeleteIdleSince(ctx, s.now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("cleaning up sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Info("old sessions removed", "count", removed)
	}
	return removed, nil
}
