package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/erp/stockflow/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add stock index", "add_stock_index"},
		{"Add-Stock-Index", "add_stock_index"},
		{"add__stock__index", "add_stock_index"},
		{"Add Orders 123", "add_orders_123"},
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

	first, err := CreateMigration(dir, "add order index")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_order_index.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "drop legacy column")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	up, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "drop legacy column")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by numeric version and skips other files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000010_later.up.sql":          {Data: []byte("--")},
			"000010_later.down.sql":        {Data: []byte("--")},
			"000002_second.up.sql":         {Data: []byte("--")},
			"000002_second.down.sql":       {Data: []byte("--")},
			"README.md":                    {Data: []byte("docs")},
			"notes_without_version.up.sql": {Data: []byte("--")},
		}

		names, err := ListMigrations(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_second", "000010_later"}, names)
	})

	t.Run("embedded schema migrations are listed", func(t *testing.T) {
		names, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		assert.Equal(t, "000001_create_core_tables", names[0])
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}
