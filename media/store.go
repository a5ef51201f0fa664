package media

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DimensionStore remembers probed image sizes in SQLite. A row is reused
// while the file's size and modification time are unchanged.
type DimensionStore struct {
	db    *sql.DB
	probe func(string) (int, int, error)
}

// NewDimensionStore opens (or creates) the database at path and ensures the
// schema exists.
func NewDimensionStore(path string) (*DimensionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-2000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &DimensionStore{db: db, probe: Probe}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *DimensionStore) Close() error {
	return s.db.Close()
}

func (s *DimensionStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS dimensions (
    path TEXT PRIMARY KEY,
    size INTEGER NOT NULL,
    mtime INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL
);
`)
	return err
}

// Dimensions returns the width and height of the image at path, probing the
// file only when no fresh row exists.
func (s *DimensionStore) Dimensions(path string) (int, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	size, mtime := info.Size(), info.ModTime().UnixNano()

	var w, h int
	err = s.db.QueryRow(
		`SELECT width, height FROM dimensions WHERE path = ? AND size = ? AND mtime = ?`,
		path, size, mtime,
	).Scan(&w, &h)
	if err == nil {
		return w, h, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("media: lookup %s: %w", path, err)
	}

	w, h, err = s.probe(path)
	if err != nil {
		return 0, 0, err
	}
	_, err = s.db.Exec(`
INSERT INTO dimensions (path, size, mtime, width, height) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    size = excluded.size,
    mtime = excluded.mtime,
    width = excluded.width,
    height = excluded.height;
`, path, size, mtime, w, h)
	if err != nil {
		return 0, 0, fmt.Errorf("media: save %s: %w", path, err)
	}
	return w, h, nil
}

// Count returns the number of cached rows.
func (s *DimensionStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM dimensions`).Scan(&n)
	return n, err
}
