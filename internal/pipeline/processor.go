package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-sentinel/internal/analysis"
	"github.com/joseph-ayodele/contract-sentinel/internal/async"
	"github.com/joseph-ayodele/contract-sentinel/internal/batch"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

// Processor coordinates ingestion (pages to text) then analysis (text to risk
// clauses). It owns the extracted text, which the user may edit between runs.
type Processor struct {
	Logger    *slog.Logger
	Ingestion *Ingestion
	Analysis  *analysis.Orchestrator
	Queue     async.Queue // used by the Start* methods

	mu   sync.RWMutex
	text string
}

func NewProcessor(logger *slog.Logger, ing *Ingestion, an *analysis.Orchestrator, q async.Queue) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Ingestion: ing, Analysis: an, Queue: q}
}

// Text is the current extracted (or edited) text.
func (p *Processor) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// SetText replaces the current text, e.g. after a manual edit.
func (p *Processor) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

// Process runs ingestion for b, stores the text, then submits it for analysis.
func (p *Processor) Process(ctx context.Context, b *batch.Manager) (entity.AnalysisResult, error) {
	// 1) ingestion -> merged text
	ing, err := p.Ingestion.Submit(ctx, b)
	if err != nil {
		p.Logger.Error("processor.ingest.failed", "err", err)
		return entity.AnalysisResult{}, err
	}
	p.SetText(ing.Text)

	// 2) analysis of that text
	res, err := p.Analysis.Submit(ctx, ing.Text)
	if err != nil {
		p.Logger.Error("processor.analysis.failed", "req_id", ing.RequestID, "err", err)
		return entity.AnalysisResult{}, err
	}
	p.Logger.Info("processor.ok", "req_id", ing.RequestID, "pages", ing.Pages, "clauses", len(res.RiskClauses))
	return res, nil
}

// Reanalyze submits the current text again without re-running ingestion.
func (p *Processor) Reanalyze(ctx context.Context) (entity.AnalysisResult, error) {
	return p.Analysis.Submit(ctx, p.Text())
}

// StartProcess validates b and runs Process on the queue. done may be nil.
func (p *Processor) StartProcess(ctx context.Context, b *batch.Manager, done func(entity.AnalysisResult, error)) (uuid.UUID, error) {
	if b == nil || b.Len() == 0 {
		return uuid.Nil, common.ErrEmptyBatch
	}
	return p.enqueue(ctx, "process", func(ctx context.Context) (entity.AnalysisResult, error) {
		return p.Process(ctx, b)
	}, done)
}

// StartReanalyze validates the current text and runs Reanalyze on the queue.
func (p *Processor) StartReanalyze(ctx context.Context, done func(entity.AnalysisResult, error)) (uuid.UUID, error) {
	if strings.TrimSpace(p.Text()) == "" {
		return uuid.Nil, common.ErrEmptyText
	}
	return p.enqueue(ctx, "reanalyze", p.Reanalyze, done)
}

func (p *Processor) enqueue(ctx context.Context, name string, run func(context.Context) (entity.AnalysisResult, error), done func(entity.AnalysisResult, error)) (uuid.UUID, error) {
	var res entity.AnalysisResult
	job := async.Job{
		ID:   uuid.New(),
		Name: name,
		Run: func(ctx context.Context) error {
			var err error
			res, err = run(ctx)
			return err
		},
		Done: func(err error) {
			if done != nil {
				done(res, err)
			}
		},
	}
	if err := p.Queue.Enqueue(ctx, job); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}
