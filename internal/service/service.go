package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"dialect-translator/internal/config"
	"dialect-translator/internal/fetcher"
	"dialect-translator/internal/models"
	"dialect-translator/internal/publisher"
	"dialect-translator/internal/storage"
	"dialect-translator/internal/translator"
)

// FeedItemResult is the outcome of translating one feed item
type FeedItemResult struct {
	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	TitleOutput string    `json:"title_output"`
	TextOutput  string    `json:"text_output"`
	Error       string    `json:"error,omitempty"`
}

// FeedResult holds feed translation results
type FeedResult struct {
	Items      []FeedItemResult `json:"items"`
	Translated int              `json:"translated"`
	Total      int              `json:"total"`
	Errors     int              `json:"errors"`
}

// StatsResult holds history statistics
type StatsResult struct {
	Total       int                      `json:"total"`
	ByDirection []storage.DirectionCount `json:"by_direction"`
}

// ExportResult holds export results
type ExportResult struct {
	Exported int      `json:"exported"`
	Files    []string `json:"files"`
}

// Service ties the translation client to history and input sources
type Service struct {
	cfg    *config.Config
	store  *storage.SQLiteStorage
	client *translator.Client
	log    *slog.Logger
}

// NewService creates a new service instance. store may be nil when history is not used.
func NewService(cfg *config.Config, store *storage.SQLiteStorage, client *translator.Client, log *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		client: client,
		log:    log,
	}
}

// CreateClient builds the translation client for the configured provider.
// A provider without credentials is logged once and still returned: every
// translation through it then fails with a configuration error.
func CreateClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*translator.Client, error) {
	var gen translator.Generator

	switch cfg.Translator.Provider {
	case "gemini":
		g, err := translator.NewGeminiGenerator(ctx,
			cfg.Translator.Gemini.APIKey,
			cfg.Translator.Gemini.Model,
			cfg.Translator.Gemini.BaseURL,
		)
		if err != nil {
			return nil, err
		}
		if !g.IsAvailable() {
			log.Warn("API_KEY environment variable is not set. Translation functionality will be unavailable.",
				"provider", g.Name())
		}
		gen = g
	case "ollama":
		g := translator.NewOllamaGenerator(
			cfg.Translator.Ollama.Host,
			cfg.Translator.Ollama.Model,
			cfg.Translator.Ollama.TopP,
			cfg.Translator.Ollama.NumCtx,
		)
		if !g.IsAvailable() {
			log.Warn("Ollama host or model is not set. Translation functionality will be unavailable.",
				"provider", g.Name())
		}
		gen = g
	default:
		return nil, fmt.Errorf("unknown translator provider: %s", cfg.Translator.Provider)
	}

	return translator.NewClient(gen, cfg.Translator.Temperature, cfg.Translator.RequestTimeout), nil
}

// ProviderName returns the name of the remote model in use
func (s *Service) ProviderName() string {
	return s.client.Name()
}

// CheckProvider verifies the remote model is reachable, if the generator supports it
func (s *Service) CheckProvider(ctx context.Context) error {
	gen := s.client.Generator()
	if !gen.IsAvailable() {
		return errors.New("translator is not configured")
	}
	if checker, ok := gen.(translator.Checker); ok {
		return checker.CheckConnection(ctx)
	}
	return nil
}

// TranslatorFor returns a translator that records successful translations
// from the given origin in the history.
func (s *Service) TranslatorFor(origin string) translator.Translator {
	return &recordingTranslator{svc: s, origin: origin}
}

type recordingTranslator struct {
	svc       *Service
	origin    string
	sourceURL string
}

func (r *recordingTranslator) Translate(ctx context.Context, text string, source, target models.Dialect) (string, error) {
	out, err := r.svc.client.Translate(ctx, text, source, target)
	if err != nil {
		r.svc.log.Error("translation failed",
			"provider", r.svc.client.Name(),
			"kind", translator.KindOf(err).String(),
			"origin", r.origin,
			"error", err)
		return "", err
	}

	if out != "" {
		r.svc.record(&models.Translation{
			Source:    source,
			Target:    target,
			Input:     text,
			Output:    out,
			Provider:  r.svc.client.Name(),
			Origin:    r.origin,
			SourceURL: r.sourceURL,
		})
	}
	return out, nil
}

func (s *Service) record(t *models.Translation) {
	if s.store == nil || !s.cfg.History.Enabled {
		return
	}
	t.Slug = makeSlug(t.Input)
	if err := s.store.InsertTranslation(t); err != nil {
		s.log.Warn("failed to record translation", "error", err)
		return
	}
	s.log.Debug("translation recorded", "id", t.ID, "direction", t.Direction())
}

func makeSlug(text string) string {
	s := slug.Make(firstLine(text))
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// Translate translates text from source into the other dialect
func (s *Service) Translate(ctx context.Context, text string, source models.Dialect, origin string) (string, error) {
	return s.TranslatorFor(origin).Translate(ctx, text, source, source.Other())
}

// TranslateURL scrapes the paragraphs of a web page and translates them
func (s *Service) TranslateURL(ctx context.Context, pageURL string, source models.Dialect) (*models.Passage, string, error) {
	page, err := fetcher.NewPageScraper().ScrapePage(pageURL)
	if err != nil {
		return nil, "", err
	}
	if !page.HasText() {
		return page, "", fmt.Errorf("no text found at %s", pageURL)
	}

	t := &recordingTranslator{svc: s, origin: models.OriginURL, sourceURL: pageURL}
	out, err := t.Translate(ctx, page.Text, source, source.Other())
	return page, out, err
}

// TranslateFeed translates the title and description of the newest items of a feed
func (s *Service) TranslateFeed(ctx context.Context, feedURL string, source models.Dialect, limit int) (*FeedResult, error) {
	passages, err := fetcher.NewFeedFetcher().FetchFeed(ctx, feedURL, limit)
	if err != nil {
		return nil, err
	}

	result := &FeedResult{Total: len(passages)}
	target := source.Other()

	for i, p := range passages {
		s.log.Info("translating feed item", "n", i+1, "of", len(passages), "title", p.Title)

		t := &recordingTranslator{svc: s, origin: models.OriginFeed, sourceURL: p.SourceURL}
		item := FeedItemResult{SourceURL: p.SourceURL, PublishedAt: p.PublishedAt, Title: p.Title, Text: p.Text}

		item.TitleOutput, err = t.Translate(ctx, p.Title, source, target)
		if err == nil && p.HasText() {
			item.TextOutput, err = t.Translate(ctx, p.Text, source, target)
		}
		if err != nil {
			item.Error = err.Error()
			result.Errors++
			// Without a credential every further item fails the same way
			if translator.KindOf(err) == translator.KindConfiguration || translator.KindOf(err) == translator.KindAuth {
				result.Items = append(result.Items, item)
				return result, err
			}
		} else {
			result.Translated++
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

// History returns the most recent translations
func (s *Service) History(limit int) ([]*models.Translation, error) {
	if s.store == nil {
		return nil, errors.New("history store is not open")
	}
	translations, err := s.store.GetRecentTranslations(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return translations, nil
}

// Translation returns one history entry. A missing entry yields storage.ErrNotFound.
func (s *Service) Translation(id int64) (*models.Translation, error) {
	if s.store == nil {
		return nil, errors.New("history store is not open")
	}
	t, err := s.store.GetTranslationByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get translation %d: %w", id, err)
	}
	return t, nil
}

// Stats returns history statistics
func (s *Service) Stats() (*StatsResult, error) {
	if s.store == nil {
		return nil, errors.New("history store is not open")
	}
	total, byDirection, err := s.store.GetStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &StatsResult{Total: total, ByDirection: byDirection}, nil
}

// Export writes translations created since the given time as markdown files into dir
func (s *Service) Export(dir string, since time.Time) (*ExportResult, error) {
	if s.store == nil {
		return nil, errors.New("history store is not open")
	}
	translations, err := s.store.GetTranslationsSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get translations: %w", err)
	}

	files, err := publisher.NewMarkdownExporter(dir).ExportMultiple(translations, "Kurdish Dialect Translations")
	if err != nil {
		return nil, err
	}
	s.log.Info("history exported", "dir", dir, "translations", len(translations))

	return &ExportResult{Exported: len(translations), Files: files}, nil
}
