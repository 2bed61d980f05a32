package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, type, created_at, updated_at, settings, status`

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	settings, err := encodeJSON(proj.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode project settings: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, type, created_at, updated_at, settings, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		proj.Type,
		proj.CreatedAt,
		proj.UpdatedAt,
		settings,
		string(proj.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID, including deleted projects
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// List returns active projects, most recently updated first
func (r *ProjectRepository) List(ctx context.Context, projectType string) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status = 'active'`
	args := []any{}
	if projectType != "" {
		query += ` AND type = ?`
		args = append(args, projectType)
	}
	query += ` ORDER BY updated_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// Update applies the fields present in req and stamps updated_at
func (r *ProjectRepository) Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	var sets []string
	var args []any

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *req.Type)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*req.Status))
	}
	if req.Settings != nil {
		settings, err := encodeJSON(*req.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode project settings: %w", err)
		}
		sets = append(sets, "settings = ?")
		args = append(args, settings)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// SoftDelete marks a project deleted without touching its content
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE projects SET status = 'deleted', updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(result)
}

// Statistics counts active projects by type and all content by type
func (r *ProjectRepository) Statistics(ctx context.Context) (*project.Statistics, error) {
	stats := &project.Statistics{
		ProjectsByType: map[string]int{},
		ContentByType:  map[string]int{},
	}

	if err := r.countByType(ctx, `SELECT type, COUNT(*) FROM projects WHERE status = 'active' GROUP BY type`, stats.ProjectsByType); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := r.countByType(ctx, `SELECT type, COUNT(*) FROM content GROUP BY type`, stats.ContentByType); err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content`).Scan(&stats.TotalContent); err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	for _, n := range stats.ProjectsByType {
		stats.TotalProjects += n
	}
	return stats, nil
}

func (r *ProjectRepository) countByType(ctx context.Context, query string, into map[string]int) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return err
		}
		into[typ] = count
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var settings, status string
	if err := row.Scan(
		&proj.ID,
		&proj.Name,
		&proj.Type,
		&proj.CreatedAt,
		&proj.UpdatedAt,
		&settings,
		&status,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeJSON(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode project settings: %w", err)
	}
	proj.Settings = decoded
	proj.Status = project.Status(status)
	return &proj, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
