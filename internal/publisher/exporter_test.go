package publisher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dialect-translator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownExporter_ExportMultiple(t *testing.T) {
	dir := t.TempDir()
	exp := NewMarkdownExporter(dir)

	translations := []*models.Translation{
		{ID: 1, Source: models.Sorani, Target: models.Badini, Input: "slav", Output: "silav", Slug: "slav", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Source: models.Badini, Target: models.Sorani, Input: "spas", Output: "supas", Slug: "spas", CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
	}

	paths, err := exp.ExportMultiple(translations, "History")
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, filepath.Join(dir, "2026", "01", "1-slav.md"), paths[0])
	assert.Equal(t, filepath.Join(dir, "index.md"), paths[2])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Badini Kurdish\n\nspas")

	index, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Contains(t, string(index), "# History")
}

func TestMarkdownExporter_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "none")
	paths, err := NewMarkdownExporter(dir).ExportMultiple(nil, "History")
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
