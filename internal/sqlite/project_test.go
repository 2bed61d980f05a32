package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/repository"
	"github.com/stretchr/testify/require"
)

func createProject(t *testing.T, repo *ProjectRepository, id, typ string, updatedAt time.Time) *project.Project {
	t.Helper()
	proj := &project.Project{
		ID:        id,
		Name:      "Project " + id,
		Type:      typ,
		Settings:  project.Settings{"art_style": "watercolor"},
		Status:    project.StatusActive,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, repo.Create(context.Background(), proj))
	return proj
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	createProject(t, repo, "p1", "story", time.Now().UTC())

	retrieved, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", retrieved.ID)
	require.Equal(t, "story", retrieved.Type)
	require.Equal(t, project.StatusActive, retrieved.Status)
	require.Equal(t, "watercolor", retrieved.Settings["art_style"])

	_, err = repo.Get(ctx, "nonexistent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_ListOrderAndFilter(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createProject(t, repo, "old", "story", base)
	createProject(t, repo, "new", "story", base.Add(time.Hour))
	createProject(t, repo, "comic", "comic", base.Add(30*time.Minute))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"new", "comic", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	stories, err := repo.List(ctx, "story")
	require.NoError(t, err)
	require.Len(t, stories, 2)
	require.Equal(t, "new", stories[0].ID)
}

func TestProjectRepository_UpdatePartial(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createProject(t, repo, "p1", "story", base)

	name := "Renamed"
	updated, err := repo.Update(ctx, "p1", project.UpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "story", updated.Type)
	require.Equal(t, "watercolor", updated.Settings["art_style"])
	require.True(t, updated.UpdatedAt.After(base))

	settings := project.Settings{"book_type": "comic"}
	updated, err = repo.Update(ctx, "p1", project.UpdateRequest{Settings: &settings})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "comic", updated.Settings["book_type"])
	require.NotContains(t, updated.Settings, "art_style")

	_, err = repo.Update(ctx, "missing", project.UpdateRequest{Name: &name})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_SoftDeleteKeepsContent(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	contentRepo := NewContentRepository(db)
	ctx := context.Background()

	createProject(t, repo, "p1", "story", time.Now().UTC())
	require.NoError(t, contentRepo.Create(ctx, &content.Item{
		ID: "c1", ProjectID: "p1", Type: content.TypeText, Text: "hello", CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, repo.SoftDelete(ctx, "p1"))

	list, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, list)

	proj, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, project.StatusDeleted, proj.Status)

	items, err := contentRepo.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.ErrorIs(t, repo.SoftDelete(ctx, "missing"), repository.ErrNotFound)
}

func TestProjectRepository_Statistics(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	contentRepo := NewContentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	createProject(t, repo, "p1", "story", now)
	createProject(t, repo, "p2", "story", now)
	createProject(t, repo, "p3", "comic", now)
	require.NoError(t, repo.SoftDelete(ctx, "p3"))

	require.NoError(t, contentRepo.Create(ctx, &content.Item{ID: "c1", ProjectID: "p1", Type: content.TypeText, Text: "a", CreatedAt: now}))
	require.NoError(t, contentRepo.Create(ctx, &content.Item{ID: "c2", ProjectID: "p1", Type: content.TypeImage, ImagePath: "x.png", OrderIndex: 1, CreatedAt: now}))

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"story": 2}, stats.ProjectsByType)
	require.Equal(t, 2, stats.TotalProjects)
	require.Equal(t, 2, stats.TotalContent)
	require.Equal(t, map[string]int{"text": 1, "image": 1}, stats.ContentByType)
}
