package models

import (
	"database/sql"
	"time"
)

// Translation origins
const (
	OriginUI   = "ui"
	OriginAPI  = "api"
	OriginCLI  = "cli"
	OriginFeed = "feed"
	OriginURL  = "url"
)

// Translation is a completed translation kept in the history store.
type Translation struct {
	ID        int64     `json:"id"`
	Source    Dialect   `json:"source"`
	Target    Dialect   `json:"target"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Provider  string    `json:"provider"`
	Origin    string    `json:"origin"`
	SourceURL string    `json:"source_url,omitempty"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Direction returns a short label such as "Sorani → Badini"
func (t *Translation) Direction() string {
	return t.Source.String() + " → " + t.Target.String()
}

// Passage is a piece of text pulled from an input source (feed item or web page).
// PublishedAt is zero when the source does not say.
type Passage struct {
	Title       string
	Text        string
	SourceURL   string
	PublishedAt time.Time
}

// HasText returns true if the passage carries any body text
func (p *Passage) HasText() bool {
	return p.Text != ""
}

// NullStringToString converts sql.NullString to a plain string
func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// StringToNullString converts an empty string into a NULL column value
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
