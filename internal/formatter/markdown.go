package formatter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dialect-translator/internal/models"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders a translation as a markdown document with YAML frontmatter
func (f *MarkdownFormatter) Format(t *models.Translation) string {
	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: \"%s\"\n", escapeQuotes(f.Title(t))))
	sb.WriteString(fmt.Sprintf("date: %s\n", t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")))
	sb.WriteString(fmt.Sprintf("source: %s\n", t.Source))
	sb.WriteString(fmt.Sprintf("target: %s\n", t.Target))
	if t.Provider != "" {
		sb.WriteString(fmt.Sprintf("provider: \"%s\"\n", escapeQuotes(t.Provider)))
	}
	if t.Origin != "" {
		sb.WriteString(fmt.Sprintf("origin: %s\n", t.Origin))
	}
	if t.SourceURL != "" {
		sb.WriteString(fmt.Sprintf("source_url: %s\n", t.SourceURL))
	}
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("## %s Kurdish\n\n", t.Source))
	sb.WriteString(f.formatContent(t.Input))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("## %s Kurdish\n\n", t.Target))
	sb.WriteString(f.formatContent(t.Output))
	sb.WriteString("\n")

	return sb.String()
}

// Title returns the first line of the input, shortened for headings
func (f *MarkdownFormatter) Title(t *models.Translation) string {
	line := strings.TrimSpace(t.Input)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	runes := []rune(line)
	if len(runes) > 60 {
		line = string(runes[:60]) + "…"
	}
	if line == "" {
		line = fmt.Sprintf("Translation %d", t.ID)
	}
	return line
}

// formatContent drops empty paragraphs and normalizes spacing between the rest
func (f *MarkdownFormatter) formatContent(content string) string {
	paragraphs := strings.Split(content, "\n\n")
	var formatted []string

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			formatted = append(formatted, p)
		}
	}

	return strings.Join(formatted, "\n\n")
}

// GetFilePath returns the export path of a translation: baseDir/YYYY/MM/<id>-<slug>.md
func (f *MarkdownFormatter) GetFilePath(t *models.Translation, baseDir string) string {
	created := t.CreatedAt.UTC()

	name := fmt.Sprintf("%d", t.ID)
	if t.Slug != "" {
		name += "-" + t.Slug
	}

	return filepath.Join(baseDir, created.Format("2006"), created.Format("01"), name+".md")
}

// GenerateIndex generates an index page linking every exported translation, grouped by month
func (f *MarkdownFormatter) GenerateIndex(translations []*models.Translation, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	byMonth := make(map[string][]*models.Translation)
	for _, t := range translations {
		key := t.CreatedAt.UTC().Format("2006-01")
		byMonth[key] = append(byMonth[key], t)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	for _, month := range months {
		m, _ := time.Parse("2006-01", month)
		sb.WriteString(fmt.Sprintf("## %s\n\n", m.Format("January 2006")))

		for _, t := range byMonth[month] {
			link := filepath.ToSlash(f.GetFilePath(t, ""))
			sb.WriteString(fmt.Sprintf("- [%s](%s) (%s)\n", f.Title(t), link, t.Direction()))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
