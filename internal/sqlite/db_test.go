package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory database that is closed with the test.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunMigrations_CreatesSchema(t *testing.T) {
	db := NewTestDB(t)

	objects := map[string]string{
		"projects":                    "table",
		"content":                     "table",
		"templates":                   "table",
		"user_sessions":               "table",
		"idx_projects_status_updated": "index",
		"idx_content_project_order":   "index",
	}
	for name, kind := range objects {
		var got string
		err := db.QueryRow(`SELECT type FROM sqlite_master WHERE name = ?`, name).Scan(&got)
		require.NoError(t, err, name)
		require.Equal(t, kind, got, name)
	}

	// Safe on every startup.
	require.NoError(t, db.RunMigrations())
}

func TestNew_Pragmas(t *testing.T) {
	db := NewTestDB(t)

	var fk, busy int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busy))
	require.Equal(t, 1, fk)
	require.Equal(t, 5000, busy)
}

func TestNew_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyforge.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	_, err = db.Exec(`INSERT INTO templates (id, name, type, latex_template) VALUES ('t1', 'Plain', 'story', 'x')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM templates WHERE id = 't1'`).Scan(&name))
	require.Equal(t, "Plain", name)
}
