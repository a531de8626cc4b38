package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"add sale notes":    "add_sale_notes",
		"Add-Return-Reason": "add_return_reason",
		"index__on__sku":    "index_on_sku",
		"   spaces   ":      "spaces",
		"drop!@#legacy":     "droplegacy",
		"_leading":          "leading",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestCreateNumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "init", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init.up.sql"), first.UpPath)

	second, err := Create(dir, "Add supplier phone", "phone is optional")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_add_supplier_phone.down.sql"), second.DownPath)

	body, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- add_supplier_phone (up)")
	assert.Contains(t, string(body), "-- phone is optional")

	_, err = Create(dir, "!!!", "")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_b.up.sql", "000002_b.down.sql",
		"000001_a.up.sql", "000001_a.down.sql",
		"000003_orphan.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := List(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a", files[0].Name)
	assert.Equal(t, uint(2), files[1].Version)
	assert.NotEmpty(t, files[1].DownPath)

	files, err = List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	files, err := List(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		assert.NotEmpty(t, f.DownPath, "migration %d has no down file", f.Version)
	}
}
