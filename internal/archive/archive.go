// Package archive keeps the full normalized text of every ingested page
// in a relational table, so the raw source material outlives the
// chunked vector index.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Page is one archived fetch of a URL.
type Page struct {
	ID        int64
	URL       string
	FullText  string
	FetchedAt time.Time
}

// Archive stores fetched page text in SQLite.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) a page archive at the given path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.init(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := a.db.Exec(p); err != nil {
			return fmt.Errorf("archive: pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			full_text TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("archive: schema creation failed: %w", err)
	}
	return nil
}

// SavePage records one fetched page and returns its row id.
func (a *Archive) SavePage(ctx context.Context, url, fullText string, fetchedAt time.Time) (int64, error) {
	res, err := a.db.ExecContext(ctx,
		"INSERT INTO pages (url, full_text, fetched_at) VALUES (?, ?, ?)",
		url, fullText, fetchedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("archive: saving page %s: %w", url, err)
	}
	return res.LastInsertId()
}

// RecentPages returns up to n archived pages, newest first.
func (a *Archive) RecentPages(ctx context.Context, n int) ([]Page, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, url, full_text, fetched_at FROM pages ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("archive: listing pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.URL, &p.FullText, &p.FetchedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
