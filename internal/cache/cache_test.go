package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRecognizer struct {
	calls int
	res   collab.OCRResult
	err   error
}

func (c *countingRecognizer) Recognize(context.Context, []entity.EncodedPage) (collab.OCRResult, error) {
	c.calls++
	return c.res, c.err
}

func openTestStore(t *testing.T) Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite:"+filepath.Join(t.TempDir(), "cache.db"), quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var pages = []entity.EncodedPage{{Filename: "1.jpg", Content: "AAA="}, {Filename: "2.jpg", Content: "BBB="}}

func TestKey_DependsOnOrder(t *testing.T) {
	swapped := []entity.EncodedPage{pages[1], pages[0]}
	if Key(pages) == Key(swapped) {
		t.Fatalf("key ignores page order")
	}
	if Key(pages) != Key(append([]entity.EncodedPage(nil), pages...)) {
		t.Fatalf("key not deterministic")
	}
}

func TestSQLiteStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
	if err := s.Put(ctx, Entry{Key: "k", Text: "first", Pages: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, Entry{Key: "k", Text: "second", Pages: 2}); err != nil {
		t.Fatalf("Put upsert: %v", err)
	}
	e, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Text != "second" || e.Pages != 2 || e.CreatedAt.IsZero() {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRecognizer_CachesRealText(t *testing.T) {
	next := &countingRecognizer{res: collab.OCRResult{Text: "contract text"}}
	r := NewRecognizer(next, openTestStore(t), quietLogger())

	for i := 0; i < 2; i++ {
		res, err := r.Recognize(context.Background(), pages)
		if err != nil {
			t.Fatalf("Recognize #%d: %v", i, err)
		}
		if res.Text != "contract text" || res.IsMock {
			t.Fatalf("result #%d = %+v", i, res)
		}
	}
	if next.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", next.calls)
	}
}

func TestRecognizer_SkipsMockAndErrors(t *testing.T) {
	next := &countingRecognizer{res: collab.OCRResult{Text: "sample", IsMock: true}}
	r := NewRecognizer(next, openTestStore(t), quietLogger())

	for i := 0; i < 2; i++ {
		if _, err := r.Recognize(context.Background(), pages); err != nil {
			t.Fatalf("Recognize: %v", err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("mock result was cached: calls = %d", next.calls)
	}

	next.err = errors.New("down")
	if _, err := r.Recognize(context.Background(), pages); err == nil {
		t.Fatalf("expected upstream error")
	}
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "redis://x", quietLogger()); err == nil {
		t.Fatalf("expected error")
	}
}
