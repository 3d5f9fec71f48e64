package publisher

import (
	"fmt"
	"os"
	"path/filepath"

	"dialect-translator/internal/formatter"
	"dialect-translator/internal/models"
)

// MarkdownExporter writes translations as markdown files under a directory.
type MarkdownExporter struct {
	dir       string
	formatter *formatter.MarkdownFormatter
}

func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{
		dir:       dir,
		formatter: formatter.NewMarkdownFormatter(),
	}
}

// Export writes one translation and returns the file path
func (e *MarkdownExporter) Export(t *models.Translation) (string, error) {
	filePath := e.formatter.GetFilePath(t, e.dir)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	content := e.formatter.Format(t)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	return filePath, nil
}

// ExportMultiple writes every translation plus an index.md and returns the written paths
func (e *MarkdownExporter) ExportMultiple(translations []*models.Translation, title string) ([]string, error) {
	var paths []string
	for _, t := range translations {
		path, err := e.Export(t)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if len(translations) == 0 {
		return paths, nil
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return paths, fmt.Errorf("failed to create directory %s: %w", e.dir, err)
	}
	indexPath := filepath.Join(e.dir, "index.md")
	index := e.formatter.GenerateIndex(translations, title)
	if err := os.WriteFile(indexPath, []byte(index), 0644); err != nil {
		return paths, fmt.Errorf("failed to write index %s: %w", indexPath, err)
	}

	return append(paths, indexPath), nil
}
