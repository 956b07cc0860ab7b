package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS ocr_cache (
	key        TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore shares the cache through a Postgres table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and ensures the cache table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 4
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = 30 * time.Minute
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	logger.Info("cache.postgres.connect")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("cache.postgres.parse_failed", "error", err)
		return nil, err
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "contract-sentinel"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("cache.postgres.connect_failed", "error", err)
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		logger.Error("cache.postgres.ping_failed", "error", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}

	logger.Info("cache.postgres.ready")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Entry, error) {
	e := Entry{Key: key}
	err := s.pool.QueryRow(ctx,
		`SELECT text, pages, created_at FROM ocr_cache WHERE key = $1`, key,
	).Scan(&e.Text, &e.Pages, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query cache: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ocr_cache (key, text, pages, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET text = EXCLUDED.text, pages = EXCLUDED.pages, created_at = EXCLUDED.created_at`,
		e.Key, e.Text, e.Pages, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.logger.Info("cache.postgres.close")
	s.pool.Close()
	return nil
}
