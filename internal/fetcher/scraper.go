package fetcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"dialect-translator/internal/models"
)

// PageScraper pulls the readable paragraphs out of a single web page.
type PageScraper struct {
	collector *colly.Collector
}

func NewPageScraper() *PageScraper {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       500 * time.Millisecond,
	})
	c.SetRequestTimeout(30 * time.Second)

	c.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	return &PageScraper{
		collector: c,
	}
}

// ScrapePage fetches pageURL and returns its title and body paragraphs
func (s *PageScraper) ScrapePage(pageURL string) (*models.Passage, error) {
	c := s.collector.Clone()

	var title string
	var published time.Time
	var paragraphs []string
	var scrapeErr error

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if title == "" {
			title = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML(`meta[property="article:published_time"], meta[itemprop="datePublished"]`, func(e *colly.HTMLElement) {
		if !published.IsZero() {
			return
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Attr("content"))); err == nil {
			published = t
		}
	})

	c.OnHTML("article p, main p, div[class*='article'] p, div[class*='content'] p", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if text != "" && !isBoilerplate(text) {
			paragraphs = append(paragraphs, text)
		}
	})

	// Fall back to every paragraph on pages without article markup
	c.OnHTML("body", func(e *colly.HTMLElement) {
		if len(paragraphs) > 0 {
			return
		}
		e.ForEach("p", func(_ int, p *colly.HTMLElement) {
			text := strings.TrimSpace(p.Text)
			if text != "" && !isBoilerplate(text) {
				paragraphs = append(paragraphs, text)
			}
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", pageURL, err)
	}
	if scrapeErr != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", pageURL, scrapeErr)
	}

	return &models.Passage{
		Title:       title,
		Text:        strings.Join(uniqueStrings(paragraphs), "\n\n"),
		SourceURL:   pageURL,
		PublishedAt: published,
	}, nil
}

// isBoilerplate checks if text is likely boilerplate content
func isBoilerplate(text string) bool {
	boilerplates := []string{
		"subscribe",
		"newsletter",
		"sign up",
		"follow us",
		"share this",
		"advertisement",
		"cookie",
		"privacy policy",
		"all rights reserved",
	}

	lower := strings.ToLower(text)
	for _, bp := range boilerplates {
		if strings.Contains(lower, bp) && len(text) < 200 {
			return true
		}
	}
	return false
}

// uniqueStrings returns unique strings from a slice, keeping order
func uniqueStrings(input []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range input {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
