package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Kurdish news</title>
    <link>https://example.com</link>
    <description>test</description>
    <item>
      <title> سڵاو </title>
      <link>https://example.com/1</link>
      <description><![CDATA[<p>First   item</p>]]></description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/2</link>
      <description>Second item</description>
    </item>
    <item>
      <title>Third</title>
      <link>https://example.com/3</link>
    </item>
  </channel>
</rss>`

func TestFeedFetcher_FetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	passages, err := NewFeedFetcher().FetchFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, "سڵاو", passages[0].Title)
	assert.Equal(t, "First item", passages[0].Text)
	assert.Equal(t, "https://example.com/1", passages[0].SourceURL)
	assert.Equal(t, 2026, passages[0].PublishedAt.Year())
	assert.Equal(t, "Second item", passages[1].Text)
	assert.True(t, passages[1].PublishedAt.IsZero())
}

func TestFeedFetcher_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	_, err := NewFeedFetcher().FetchFeed(context.Background(), srv.URL, 0)
	require.Error(t, err)
}

func TestPageScraper_ScrapePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Page title</title>
<meta property="article:published_time" content="2026-03-02T10:00:00Z"></head><body>
<article>
  <p>First paragraph.</p>
  <p>Subscribe to our newsletter</p>
  <p>Second paragraph.</p>
  <p>First paragraph.</p>
</article>
<footer><p>Footer text</p></footer>
</body></html>`))
	}))
	defer srv.Close()

	p, err := NewPageScraper().ScrapePage(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Page title", p.Title)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", p.Text)
	assert.Equal(t, srv.URL, p.SourceURL)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), p.PublishedAt.UTC())
}

func TestPageScraper_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewPageScraper().ScrapePage(srv.URL)
	require.Error(t, err)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tags and whitespace", in: "<p>a</p>\n<b>b</b>  c", want: "a b c"},
		{name: "adjacent paragraphs", in: "<p>one</p><p>two</p>", want: "one two"},
		{name: "inline markup stays joined", in: "Jer<b>ry</b>", want: "Jerry"},
		{name: "entities decoded", in: "<p>Tom &amp; Jerry&#8217;s</p>", want: "Tom & Jerry\u2019s"},
		{name: "scripts dropped", in: "<p>text</p><script>alert(1)</script>", want: "text"},
		{name: "plain text", in: "just text", want: "just text"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}

const entityFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Entities</title>
    <link>https://example.com</link>
    <description>test</description>
    <item>
      <title>Cartoons</title>
      <link>https://example.com/tom</link>
      <description><![CDATA[<p>Tom &amp; Jerry&#8217;s</p><p>second&nbsp;paragraph</p>]]></description>
    </item>
  </channel>
</rss>`

func TestFeedFetcher_DecodesEntitiesInCDATA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(entityFeed))
	}))
	defer srv.Close()

	passages, err := NewFeedFetcher().FetchFeed(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	require.Len(t, passages, 1)

	assert.Equal(t, "Tom & Jerry\u2019s second paragraph", passages[0].Text)
	assert.NotContains(t, passages[0].Text, "&amp;")
	assert.NotContains(t, passages[0].Text, "&#8217;")
}
