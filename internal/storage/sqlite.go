package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dialect-translator/internal/models"
)

// ErrNotFound is returned when no translation has the requested ID
var ErrNotFound = errors.New("translation not found")

type SQLiteStorage struct {
	db *sql.DB
}

// DirectionCount is the number of stored translations for one source dialect
type DirectionCount struct {
	Source models.Dialect
	Target models.Dialect
	Count  int
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		provider TEXT DEFAULT '',
		origin TEXT DEFAULT '',
		source_url TEXT,
		slug TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_translations_created ON translations(created_at);
	CREATE INDEX IF NOT EXISTS idx_translations_source ON translations(source);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// InsertTranslation stores a completed translation and sets its ID
func (s *SQLiteStorage) InsertTranslation(t *models.Translation) error {
	if !t.Source.Valid() || !t.Target.Valid() {
		return fmt.Errorf("invalid translation direction %q", t.Direction())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO translations (
		source, target, input, output, provider, origin, source_url, slug, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		string(t.Source),
		string(t.Target),
		t.Input,
		t.Output,
		t.Provider,
		t.Origin,
		models.StringToNullString(t.SourceURL),
		t.Slug,
		t.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetTranslationByID retrieves a translation by its ID
func (s *SQLiteStorage) GetTranslationByID(id int64) (*models.Translation, error) {
	query := `
	SELECT id, source, target, input, output, provider, origin, source_url, slug, created_at
	FROM translations WHERE id = ?
	`
	return s.scanTranslation(s.db.QueryRow(query, id))
}

// GetRecentTranslations returns the most recent translations, newest first
func (s *SQLiteStorage) GetRecentTranslations(limit int) ([]*models.Translation, error) {
	query := `
	SELECT id, source, target, input, output, provider, origin, source_url, slug, created_at
	FROM translations
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`
	return s.scanTranslations(query, limit)
}

// GetTranslationsSince returns translations created at or after since, oldest first
func (s *SQLiteStorage) GetTranslationsSince(since time.Time) ([]*models.Translation, error) {
	query := `
	SELECT id, source, target, input, output, provider, origin, source_url, slug, created_at
	FROM translations
	WHERE created_at >= ?
	ORDER BY created_at ASC, id ASC
	`
	return s.scanTranslations(query, since.UTC())
}

// GetStats returns the total count and the count per direction
func (s *SQLiteStorage) GetStats() (total int, byDirection []DirectionCount, err error) {
	err = s.db.QueryRow("SELECT COUNT(*) FROM translations").Scan(&total)
	if err != nil {
		return
	}

	rows, err := s.db.Query("SELECT source, target, COUNT(*) FROM translations GROUP BY source, target ORDER BY source")
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var dc DirectionCount
		var source, target string
		if err = rows.Scan(&source, &target, &dc.Count); err != nil {
			return
		}
		dc.Source = models.Dialect(source)
		dc.Target = models.Dialect(target)
		byDirection = append(byDirection, dc)
	}
	err = rows.Err()
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(row rowScanner) (*models.Translation, error) {
	var t models.Translation
	var source, target string
	var sourceURL sql.NullString

	err := row.Scan(
		&t.ID,
		&source,
		&target,
		&t.Input,
		&t.Output,
		&t.Provider,
		&t.Origin,
		&sourceURL,
		&t.Slug,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Source = models.Dialect(source)
	t.Target = models.Dialect(target)
	t.SourceURL = models.NullStringToString(sourceURL)
	return &t, nil
}

func (s *SQLiteStorage) scanTranslation(row *sql.Row) (*models.Translation, error) {
	t, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStorage) scanTranslations(query string, args ...interface{}) ([]*models.Translation, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var translations []*models.Translation
	for rows.Next() {
		t, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}

	return translations, rows.Err()
}
