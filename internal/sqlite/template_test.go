package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/repository"
	"github.com/stretchr/testify/require"
)

func seedTemplates(t *testing.T, repo *TemplateRepository) {
	t.Helper()
	for _, tpl := range template.Defaults() {
		tpl.CreatedAt = time.Now().UTC()
		require.NoError(t, repo.Upsert(context.Background(), &tpl))
	}
}

func TestTemplateRepository_SeedAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	seedTemplates(t, repo)
	seedTemplates(t, repo)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"comic", "educational", "story"}, []string{all[0].Type, all[1].Type, all[2].Type})
	for _, tpl := range all {
		require.Empty(t, tpl.Body)
		require.True(t, tpl.IsDefault)
	}

	stories, err := repo.List(ctx, "story")
	require.NoError(t, err)
	require.Len(t, stories, 1)
	require.Equal(t, "children_storybook", stories[0].ID)
}

func TestTemplateRepository_ListDefaultsFirst(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	seedTemplates(t, repo)
	require.NoError(t, repo.Upsert(ctx, &template.Template{
		ID: "a_custom", Name: "A Custom Story", Type: "story", Body: "{content}", CreatedAt: time.Now().UTC(),
	}))

	stories, err := repo.List(ctx, "story")
	require.NoError(t, err)
	require.Len(t, stories, 2)
	require.Equal(t, "children_storybook", stories[0].ID)
	require.Equal(t, "a_custom", stories[1].ID)
}

func TestTemplateRepository_Get(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	seedTemplates(t, repo)

	tpl, err := repo.Get(ctx, "comic_book")
	require.NoError(t, err)
	require.Equal(t, "Comic Book Style", tpl.Name)
	require.Contains(t, tpl.Body, "{content}")

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
