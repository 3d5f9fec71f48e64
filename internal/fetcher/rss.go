package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"dialect-translator/internal/models"
)

type FeedFetcher struct {
	parser *gofeed.Parser
}

func NewFeedFetcher() *FeedFetcher {
	return &FeedFetcher{
		parser: gofeed.NewParser(),
	}
}

// FetchFeed returns up to limit passages from an RSS/Atom feed, newest first
// as the feed orders them. limit <= 0 means all items.
func (f *FeedFetcher) FetchFeed(ctx context.Context, feedURL string, limit int) ([]*models.Passage, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	var passages []*models.Passage
	for _, item := range feed.Items {
		if limit > 0 && len(passages) >= limit {
			break
		}
		passages = append(passages, f.itemToPassage(item))
	}

	return passages, nil
}

func (f *FeedFetcher) itemToPassage(item *gofeed.Item) *models.Passage {
	p := &models.Passage{
		Title:     strings.TrimSpace(item.Title),
		Text:      plainText(item.Description),
		SourceURL: item.Link,
	}

	if item.PublishedParsed != nil {
		p.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		p.PublishedAt = *item.UpdatedParsed
	}

	return p
}

// plainText returns the readable text of an HTML fragment with entities
// decoded and whitespace collapsed. Block elements are kept apart.
func plainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var sb strings.Builder
	writeText(&sb, doc.Selection)
	return strings.Join(strings.Fields(sb.String()), " ")
}

var blockElements = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "figcaption": true,
}

func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			sb.WriteString(c.Text())
		case name == "script" || name == "style":
		default:
			writeText(sb, c)
			if blockElements[name] {
				sb.WriteByte(' ')
			}
		}
	})
}
