package mocks

import (
	"context"
	"time"

	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, projectType string) ([]project.Project, error) {
	args := m.Called(ctx, projectType)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	args := m.Called(ctx, id, req)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) Statistics(ctx context.Context) (*project.Statistics, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).(*project.Statistics); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

// ContentRepository is a mock for content.Repository.
type ContentRepository struct {
	mock.Mock
}

func (m *ContentRepository) Create(ctx context.Context, item *content.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ContentRepository) Get(ctx context.Context, id string) (*content.Item, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*content.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) ListByProject(ctx context.Context, projectID string) ([]content.Item, error) {
	args := m.Called(ctx, projectID)
	if items, ok := args.Get(0).([]content.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) Update(ctx context.Context, id string, req content.UpdateRequest) (*content.Item, error) {
	args := m.Called(ctx, id, req)
	if item, ok := args.Get(0).(*content.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TemplateRepository is a mock for template.Repository.
type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) List(ctx context.Context, templateType string) ([]template.Template, error) {
	args := m.Called(ctx, templateType)
	if list, ok := args.Get(0).([]template.Template); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TemplateRepository) Get(ctx context.Context, id string) (*template.Template, error) {
	args := m.Called(ctx, id)
	if tpl, ok := args.Get(0).(*template.Template); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TemplateRepository) Upsert(ctx context.Context, tpl *template.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Touch(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
