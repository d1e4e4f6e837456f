package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestEmbeddedMigrationsMatchSourceTree(t *testing.T) {
	require.NoError(t, ValidateDir(DefaultDir))

	embeddedFS, err := Source("")
	require.NoError(t, err)
	embeddedNames, err := fs.Glob(embeddedFS, "*.sql")
	require.NoError(t, err)

	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, embeddedNames, len(onDisk))
	for i, path := range onDisk {
		assert.Equal(t, filepath.Base(path), embeddedNames[i])
	}
}

func TestSourceRejectsMissingDir(t *testing.T) {
	_, err := Source(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestMigrationsCarryConsistencyConstraints(t *testing.T) {
	checks := map[string][]string{
		"*_create_inventory.sql": {
			"CREATE TABLE IF NOT EXISTS inventory_items",
			"CHECK (quantity_on_hand >= 0)",
			"CREATE TABLE IF NOT EXISTS stock_movements",
			"DROP TABLE IF EXISTS stock_movements",
		},
		"*_create_reservations.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_active_room ON reservations (room_id) WHERE status = 'active'",
			"CHECK (nights >= 1)",
		},
		"*_create_housekeeping_tasks.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_housekeeping_tasks_pending_room ON housekeeping_tasks (room_id) WHERE status = 'pending'",
			"CREATE TABLE IF NOT EXISTS task_consumptions",
		},
		"*_create_staff.sql": {
			"CREATE TABLE IF NOT EXISTS staff",
			"ADD COLUMN IF NOT EXISTS staff_id BIGINT REFERENCES staff (id)",
		},
	}

	for pattern, subs := range checks {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, sub := range subs {
			assert.Contains(t, string(data), sub, pattern)
		}
	}
}

func TestPartialIndexesMatchMigrations(t *testing.T) {
	for _, stmt := range partialIndexes {
		name := strings.Fields(stmt)[6]
		matches, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
		require.NoError(t, err)

		found := false
		for _, m := range matches {
			data, err := os.ReadFile(m)
			require.NoError(t, err)
			if strings.Contains(string(data), name) {
				found = true
			}
		}
		assert.True(t, found, "index %s missing from migrations", name)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	path, err := CreateSQLMigration(dir, "Add Room Notes!")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20261019083000_add_room_notes.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "add room notes")
	require.Error(t, err)

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_rooms.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateFSAnnotations(t *testing.T) {
	cases := map[string]string{
		"missing down": "-- +goose Up\nSELECT 1;\n",
		"down first":   "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"unbalanced":   "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
	}
	for name, body := range cases {
		fsys := fstest.MapFS{"20261001000000_bad.sql": &fstest.MapFile{Data: []byte(body)}}
		assert.Error(t, ValidateFS(fsys), name)
	}
	assert.Error(t, ValidateFS(fstest.MapFS{}), "empty dir")

	dup := fstest.MapFS{
		"20261001000000_a.sql": &fstest.MapFile{Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20261001000000_b.sql": &fstest.MapFile{Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, ValidateFS(dup), "duplicate version")
}
