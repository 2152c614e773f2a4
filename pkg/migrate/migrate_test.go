package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/rentflow-backend/pkg/migrate"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, migrate.ValidateFS(migrate.Embedded()))
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestValidateFSCollectsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101000000_ok.sql":         {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20260101000000_dup.sql":        {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"bad-name.sql":                  {Data: []byte("")},
		"20260101000001_no_markers.sql": {Data: []byte("SELECT 1;")},
		"README.md":                     {Data: []byte("ignored")},
	}

	err := migrate.ValidateFS(fsys)
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 4)
	assert.Contains(t, err.Error(), "duplicate migration version 20260101000000")
	assert.Contains(t, err.Error(), `invalid migration filename "bad-name.sql"`)
}

func TestValidateFSRejectsEmptySource(t *testing.T) {
	err := migrate.ValidateFS(fstest.MapFS{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migrations found")
}

func TestSourceRejectsMissingDir(t *testing.T) {
	_, err := migrate.Source(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 4, 2, 10, 11, 12, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Unit Notes!", now)
	require.NoError(t, err)
	assert.Equal(t, "20260402101112_add_unit_notes.sql", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "other", now)
	assert.ErrorContains(t, err, "already used")

	_, err = migrate.CreateSQLMigration(dir, "!!!", now.Add(time.Second))
	assert.Error(t, err)
}
