// Package history keeps a catalog of past and in-flight downloads. It is an
// observer-side record for the CLI; the download engine itself owns only the
// per-job resume state and never touches this store.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Statuses a catalog entry can carry.
const (
	StatusDownloading = "downloading"
	StatusPaused      = "paused"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

// Entry is one row of the catalog.
type Entry struct {
	ID         string
	URL        string
	FileName   string
	FinalPath  string
	Status     string
	TotalBytes int64
	Downloaded int64
	CreatedAt  int64
	UpdatedAt  int64
}

// Catalog is a sqlite-backed download history.
type Catalog struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	file_name   TEXT,
	final_path  TEXT,
	status      TEXT NOT NULL,
	total_bytes INTEGER NOT NULL DEFAULT 0,
	downloaded  INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

// Open opens (and if needed creates) the catalog at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init history schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert inserts or refreshes an entry, keyed by job id.
func (c *Catalog) Upsert(e Entry) error {
	now := time.Now().Unix()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	_, err := c.db.Exec(`
		INSERT INTO downloads (
			id, url, file_name, final_path, status, total_bytes, downloaded, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url=excluded.url,
			file_name=excluded.file_name,
			final_path=excluded.final_path,
			status=excluded.status,
			total_bytes=excluded.total_bytes,
			downloaded=excluded.downloaded,
			updated_at=excluded.updated_at
	`, e.ID, e.URL, e.FileName, e.FinalPath, e.Status, e.TotalBytes, e.Downloaded, e.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("failed to upsert download: %w", err)
	}
	return nil
}

// SetStatus updates only the status and progress of an entry.
func (c *Catalog) SetStatus(id, status string, downloaded int64) error {
	res, err := c.db.Exec(
		`UPDATE downloads SET status = ?, downloaded = ?, updated_at = ? WHERE id = ?`,
		status, downloaded, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("download not found: %s", id)
	}
	return nil
}

// Get returns an entry by id, or nil when absent.
func (c *Catalog) Get(id string) (*Entry, error) {
	row := c.db.QueryRow(`
		SELECT id, url, file_name, final_path, status, total_bytes, downloaded, created_at, updated_at
		FROM downloads WHERE id = ?`, id)

	var e Entry
	err := row.Scan(&e.ID, &e.URL, &e.FileName, &e.FinalPath, &e.Status,
		&e.TotalBytes, &e.Downloaded, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query download: %w", err)
	}
	return &e, nil
}

// List returns all entries, newest first.
func (c *Catalog) List() ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT id, url, file_name, final_path, status, total_bytes, downloaded, created_at, updated_at
		FROM downloads ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.URL, &e.FileName, &e.FinalPath, &e.Status,
			&e.TotalBytes, &e.Downloaded, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove deletes an entry by id.
func (c *Catalog) Remove(id string) error {
	_, err := c.db.Exec(`DELETE FROM downloads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove download: %w", err)
	}
	return nil
}
