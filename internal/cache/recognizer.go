package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

// Recognizer serves repeated batches from a Store. Placeholder (mock) text is
// never stored, and store failures fall through to the wrapped recognizer.
type Recognizer struct {
	next   collab.TextRecognizer
	store  Store
	logger *slog.Logger
}

func NewRecognizer(next collab.TextRecognizer, store Store, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{next: next, store: store, logger: logger}
}

func (r *Recognizer) Recognize(ctx context.Context, files []entity.EncodedPage) (collab.OCRResult, error) {
	key := Key(files)

	e, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		r.logger.Info("cache.ocr.hit", "key", key[:12], "pages", e.Pages)
		return collab.OCRResult{Text: e.Text}, nil
	case errors.Is(err, ErrMiss):
		r.logger.Debug("cache.ocr.miss", "key", key[:12])
	default:
		r.logger.Warn("cache.ocr.get_failed", "key", key[:12], "error", err)
	}

	res, err := r.next.Recognize(ctx, files)
	if err != nil {
		return res, err
	}
	if res.IsMock {
		return res, nil
	}
	if err := r.store.Put(ctx, Entry{Key: key, Text: res.Text, Pages: len(files)}); err != nil {
		r.logger.Warn("cache.ocr.put_failed", "key", key[:12], "error", err)
	}
	return res, nil
}
