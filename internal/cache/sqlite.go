package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ocr_cache (
	key        TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps the cache in a local sqlite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("cache.sqlite.open", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, error) {
	e := Entry{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT text, pages, created_at FROM ocr_cache WHERE key = ?`, key,
	).Scan(&e.Text, &e.Pages, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query cache: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ocr_cache (key, text, pages, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET text = excluded.text, pages = excluded.pages, created_at = excluded.created_at`,
		e.Key, e.Text, e.Pages, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Debug("cache.sqlite.close")
	return s.db.Close()
}
