package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add loans table", "add_loans_table"},
		{"Add-Loans-Table", "add_loans_table"},
		{"ADD_LOANS_TABLE", "add_loans_table"},
		{"add__loans__table", "add_loans_table"},
		{"Add Assets 123", "add_assets_123"},
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

	first, err := CreateMigration(dir, "add asset tags", "Tag assets for search")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_asset_tags.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add asset tags")
	assert.Contains(t, string(up), "-- Description: Tag assets for search")

	second, err := CreateMigration(dir, "add loan reminders", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.FileExists(t, second.DownPath)
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	require.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_create_assets.up.sql":   {Data: []byte("")},
		"000002_create_assets.down.sql": {Data: []byte("")},
		"000001_create_users.up.sql":    {Data: []byte("")},
		"README.md":                     {Data: []byte("")},
		"notes_without_version.up.sql":  {Data: []byte("")},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, MigrationInfo{Version: 1, Name: "create_users"}, list[0])
	assert.Equal(t, MigrationInfo{Version: 2, Name: "create_assets", HasDown: true}, list[1])
}

func TestListMigrations_MissingDir(t *testing.T) {
	list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrations(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, list, 3)

	names := []string{list[0].Name, list[1].Name, list[2].Name}
	assert.Equal(t, []string{"create_users", "create_assets", "create_loans"}, names)
	for _, m := range list {
		assert.True(t, m.HasDown, "migration %d has a rollback", m.Version)
	}
}
