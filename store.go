package ogcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed-width so created_at sorts correctly as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database holding the records of uploaded cards.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// WAL lets readers run alongside the writer; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS og_images (
    id TEXT PRIMARY KEY,
    content_id TEXT NOT NULL DEFAULT '',
    filename TEXT NOT NULL,
    url TEXT NOT NULL,
    storage_key TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS og_images_created_at ON og_images (created_at);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveImage inserts img, assigning an ID and creation time when unset, and
// returns the stored record.
func (s *Store) SaveImage(ctx context.Context, img OGImage) (OGImage, error) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.CreatedAt == "" {
		img.CreatedAt = s.now().UTC().Format(createdAtLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO og_images (id, content_id, filename, url, storage_key, title, size, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.ContentID, img.Filename, img.URL, img.Key, img.Title, img.Size, img.CreatedAt)
	if err != nil {
		return OGImage{}, fmt.Errorf("save image %s: %w", img.Filename, err)
	}
	return img, nil
}

// GetImage returns a record by ID.
func (s *Store) GetImage(ctx context.Context, id string) (OGImage, error) {
	var img OGImage
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_id, filename, url, storage_key, title, size, created_at FROM og_images WHERE id = ?`, id).
		Scan(&img.ID, &img.ContentID, &img.Filename, &img.URL, &img.Key, &img.Title, &img.Size, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OGImage{}, ErrNotFound
	}
	if err != nil {
		return OGImage{}, fmt.Errorf("get image %s: %w", id, err)
	}
	return img, nil
}

// ListImages returns every record, newest first.
func (s *Store) ListImages(ctx context.Context) ([]OGImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_id, filename, url, storage_key, title, size, created_at FROM og_images ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []OGImage{}
	for rows.Next() {
		var img OGImage
		if err := rows.Scan(&img.ID, &img.ContentID, &img.Filename, &img.URL, &img.Key, &img.Title, &img.Size, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes a record by ID.
func (s *Store) DeleteImage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM og_images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
