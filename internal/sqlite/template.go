package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/repository"
)

// TemplateRepository implements template.Repository for SQLite
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns templates without bodies, defaults first
func (r *TemplateRepository) List(ctx context.Context, templateType string) ([]template.Template, error) {
	var rows *sql.Rows
	var err error
	if templateType != "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, type, description, is_default, created_at
			FROM templates WHERE type = ?
			ORDER BY is_default DESC, name
		`, templateType)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, type, description, is_default, created_at
			FROM templates
			ORDER BY type, is_default DESC, name
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []template.Template{}
	for rows.Next() {
		var tpl template.Template
		var description sql.NullString
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Type, &description, &tpl.IsDefault, &tpl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		tpl.Description = description.String
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// Get retrieves a template including its body
func (r *TemplateRepository) Get(ctx context.Context, id string) (*template.Template, error) {
	query := `
		SELECT id, name, type, latex_template, description, is_default, created_at
		FROM templates WHERE id = ?
	`
	var tpl template.Template
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Type,
		&tpl.Body,
		&description,
		&tpl.IsDefault,
		&tpl.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	tpl.Description = description.String
	return &tpl, nil
}

// Upsert inserts a template or replaces the row with the same ID
func (r *TemplateRepository) Upsert(ctx context.Context, tpl *template.Template) error {
	query := `
		INSERT INTO templates (id, name, type, latex_template, description, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			latex_template = excluded.latex_template,
			description = excluded.description,
			is_default = excluded.is_default
	`
	_, err := r.db.ExecContext(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Type,
		tpl.Body,
		nullString(tpl.Description),
		tpl.IsDefault,
		tpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}
