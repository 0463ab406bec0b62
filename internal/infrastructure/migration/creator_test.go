package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ratings table", "add_ratings_table"},
		{"Add-Ratings-Table", "add_ratings_table"},
		{"ADD_RATINGS_TABLE", "add_ratings_table"},
		{"add__ratings__table", "add_ratings_table"},
		{"Seed Catalog 2", "seed_catalog_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add return tracking", "Track courier numbers on return requests")
	require.NoError(t, err)
	require.NotNil(t, mf)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, "000001_add_return_tracking.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000001_add_return_tracking.down.sql", filepath.Base(mf.DownPath))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add return tracking")
	assert.Contains(t, string(upContent), "Track courier numbers on return requests")
	assert.Contains(t, string(upContent), "Write your UP migration SQL here")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
	assert.Contains(t, string(downContent), "Write your DOWN migration SQL here")
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000001_create_storefront_schema.up.sql",
		"000001_create_storefront_schema.down.sql",
		"000002_seed_catalog.up.sql",
		"000002_seed_catalog.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}

	mf, err := CreateMigration(dir, "add vouchers", "")
	require.NoError(t, err)
	assert.Equal(t, "000003", mf.Version)

	next, err := CreateMigration(dir, "add voucher usage", "")
	require.NoError(t, err)
	assert.Equal(t, "000004", next.Version)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(nested, "test", "test migration")
	require.NoError(t, err)
	assert.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000010_add_ratings.up.sql",
		"000002_seed_catalog.up.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000002_seed_catalog.down.sql",
		"000010_add_ratings.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_seed_catalog", "000010_add_ratings"}, migrations)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path/to/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_IgnoresOtherEntries(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"000001_init.up.sql", "000001_init.down.sql", "README.md", ".gitkeep", "migrations.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, migrations)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	root := filepath.Join("..", "..", "..", "migrations")
	ups, err := ListMigrations(root)
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for i, base := range ups {
		v, ok := parseVersion(base)
		require.True(t, ok, base)
		assert.Equal(t, uint64(i+1), v, "migrations must be numbered without gaps")

		down, err := os.ReadFile(filepath.Join(root, base+".down.sql"))
		require.NoError(t, err, "missing down migration for %s", base)
		assert.NotEmpty(t, strings.TrimSpace(string(down)))
	}
}
