package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

// ErrMiss is returned by Store.Get when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// Entry is a stored OCR result.
type Entry struct {
	Key       string
	Text      string
	Pages     int
	CreatedAt time.Time
}

// Store persists OCR results by batch key.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	Close() error
}

// Key hashes the encoded pages in order. Same pages in another order give another key.
func Key(files []entity.EncodedPage) string {
	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%d:%s\x00%d:%s\x00", len(f.Filename), f.Filename, len(f.Content), f.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Open picks a store from the DSN scheme: sqlite:<path> or postgres://...
func Open(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err := OpenPostgres(ctx, PostgresConfig{DSN: dsn}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "//")
		s, err := OpenSQLite(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported cache dsn %q (want sqlite:<path> or postgres://)", dsn)
	}
}
