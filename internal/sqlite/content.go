package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/repository"
)

// ContentRepository implements content.Repository for SQLite
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, project_id, type, content_text, image_path, audio_path, order_index, metadata, created_at`

// Create inserts a content item and stamps the owning project
func (r *ContentRepository) Create(ctx context.Context, item *content.Item) error {
	metadata, err := encodeJSON(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode content metadata: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Soft-deleted projects accept no new content.
	query := `
		INSERT INTO content (id, project_id, type, content_text, image_path, audio_path, order_index, metadata, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM projects WHERE id = ? AND status = 'active')
	`
	res, err := tx.ExecContext(ctx, query,
		item.ID,
		item.ProjectID,
		string(item.Type),
		nullString(item.Text),
		nullString(item.ImagePath),
		nullString(item.AudioPath),
		item.OrderIndex,
		metadata,
		item.CreatedAt,
		item.ProjectID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create content: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := touchProject(ctx, tx, item.ProjectID); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a content item by ID
func (r *ContentRepository) Get(ctx context.Context, id string) (*content.Item, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = ?`

	item, err := scanContent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return item, nil
}

// ListByProject returns a project's items in render order
func (r *ContentRepository) ListByProject(ctx context.Context, projectID string) ([]content.Item, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content
		WHERE project_id = ?
		ORDER BY order_index, created_at, rowid
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	items := []content.Item{}
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content: %w", err)
	}
	return items, nil
}

// Update applies the fields present in req and stamps the owning project
func (r *ContentRepository) Update(ctx context.Context, id string, req content.UpdateRequest) (*content.Item, error) {
	var sets []string
	var args []any

	if req.Text != nil {
		sets = append(sets, "content_text = ?")
		args = append(args, nullString(*req.Text))
	}
	if req.ImagePath != nil {
		sets = append(sets, "image_path = ?")
		args = append(args, nullString(*req.ImagePath))
	}
	if req.AudioPath != nil {
		sets = append(sets, "audio_path = ?")
		args = append(args, nullString(*req.AudioPath))
	}
	if req.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *req.OrderIndex)
	}
	if req.Metadata != nil {
		metadata, err := encodeJSON(*req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode content metadata: %w", err)
		}
		sets = append(sets, "metadata = ?")
		args = append(args, metadata)
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE content SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	if err := touchProjectOf(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit content update: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a content row and stamps the owning project
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := touchProjectOf(ctx, tx, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

func touchProject(ctx context.Context, tx *sql.Tx, projectID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, time.Now().UTC(), projectID); err != nil {
		return fmt.Errorf("failed to stamp project: %w", err)
	}
	return nil
}

func touchProjectOf(ctx context.Context, tx *sql.Tx, contentID string) error {
	query := `UPDATE projects SET updated_at = ? WHERE id = (SELECT project_id FROM content WHERE id = ?)`
	if _, err := tx.ExecContext(ctx, query, time.Now().UTC(), contentID); err != nil {
		return fmt.Errorf("failed to stamp project: %w", err)
	}
	return nil
}

func scanContent(row rowScanner) (*content.Item, error) {
	var item content.Item
	var typ, metadata string
	var text, imagePath, audioPath sql.NullString
	if err := row.Scan(
		&item.ID,
		&item.ProjectID,
		&typ,
		&text,
		&imagePath,
		&audioPath,
		&item.OrderIndex,
		&metadata,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content metadata: %w", err)
	}
	item.Type = content.Type(typ)
	item.Text = text.String
	item.ImagePath = imagePath.String
	item.AudioPath = audioPath.String
	item.Metadata = decoded
	return &item, nil
}
