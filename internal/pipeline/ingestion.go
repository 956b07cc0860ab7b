package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/batch"
	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
	"github.com/joseph-ayodele/contract-sentinel/internal/stage"
)

// IngestionResult is the merged text for one submitted batch.
type IngestionResult struct {
	Text      string
	IsMock    bool
	Pages     int
	RequestID string
}

// Ingestion encodes a batch and sends it to the OCR collaborator in one request.
// It does not start analysis; Processor does that.
type Ingestion struct {
	Recognizer collab.TextRecognizer
	Notifier   notify.Notifier
	Logger     *slog.Logger

	mu      sync.Mutex
	machine stage.Machine
}

func NewIngestion(rec collab.TextRecognizer, notifier notify.Notifier, logger *slog.Logger) *Ingestion {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Ingestion{Recognizer: rec, Notifier: notifier, Logger: logger}
}

// Submit recognizes the whole batch. The batch is left as it was.
func (p *Ingestion) Submit(ctx context.Context, b *batch.Manager) (IngestionResult, error) {
	if b == nil || b.Len() == 0 {
		p.Notifier.Notify(notify.Notice{Level: notify.LevelWarning, Stage: notify.StageIngestion, Message: "please add at least one page"})
		return IngestionResult{}, common.ErrEmptyBatch
	}

	files := b.Encode()
	reqID := uuid.New().String()
	ctx = common.WithRequestID(ctx, reqID)

	p.mu.Lock()
	tok := p.machine.Begin()
	p.mu.Unlock()

	start := time.Now()
	p.Logger.Info("pipeline.ingest.start", "req_id", reqID, "token", tok, "pages", len(files), "bytes", b.TotalBytes())

	res, err := p.Recognizer.Recognize(ctx, files)

	p.mu.Lock()
	if !p.machine.IsLatest(tok) {
		p.mu.Unlock()
		p.Logger.Info("pipeline.ingest.discard_stale", "req_id", reqID, "token", tok)
		return IngestionResult{}, fmt.Errorf("%w: ingestion token %d", common.ErrSuperseded, tok)
	}
	p.machine.Settle(tok, err != nil)
	p.mu.Unlock()

	if err != nil {
		p.Logger.Error("pipeline.ingest.failed", "req_id", reqID, "error", err, "code", common.CodeOf(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds())
		p.Notifier.Notify(notify.Notice{Level: notify.LevelError, Stage: notify.StageIngestion, Message: "text recognition failed: " + err.Error()})
		return IngestionResult{}, common.StageError(common.ErrIngestionFailed, err)
	}

	p.Logger.Info("pipeline.ingest.ok",
		"req_id", reqID,
		"pages", len(files),
		"text_len", len(res.Text),
		"is_mock", res.IsMock,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if res.IsMock {
		p.Notifier.Notify(notify.Notice{Level: notify.LevelWarning, Stage: notify.StageIngestion, Message: "server has no OCR configured, using sample text"})
	} else {
		p.Notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Stage: notify.StageIngestion, Message: "text extracted, starting analysis"})
	}

	return IngestionResult{Text: res.Text, IsMock: res.IsMock, Pages: len(files), RequestID: reqID}, nil
}

func (p *Ingestion) Status() constants.StageStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Status()
}
