package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
	"github.com/joseph-ayodele/contract-sentinel/internal/stage"
)

// Snapshot is a consistent read of the orchestrator.
type Snapshot struct {
	Status constants.StageStatus
	Result *entity.AnalysisResult // nil unless Status is Succeeded
	Err    error                  // last failure of the latest submission
	Token  stage.Token
	Text   string // text of the latest submission
}

// Orchestrator owns the single authoritative analysis result.
type Orchestrator struct {
	reviewer collab.RiskReviewer
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	machine stage.Machine
	result  *entity.AnalysisResult
	lastErr error
	text    string
}

func NewOrchestrator(reviewer collab.RiskReviewer, notifier notify.Notifier, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Orchestrator{reviewer: reviewer, notifier: notifier, logger: logger}
}

// Submit sends text for review and makes the reply the current result, unless
// a newer submission was made meanwhile; then the reply is dropped and
// common.ErrSuperseded is returned.
func (o *Orchestrator) Submit(ctx context.Context, text string) (entity.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		o.notifier.Notify(notify.Notice{Level: notify.LevelWarning, Stage: notify.StageAnalysis, Message: "contract text is empty"})
		return entity.AnalysisResult{}, common.ErrEmptyText
	}

	o.mu.Lock()
	tok := o.machine.Begin()
	o.result = nil
	o.lastErr = nil
	o.text = text
	o.mu.Unlock()

	start := time.Now()
	o.logger.Info("analysis.submit", "token", tok, "text_len", len(text))

	res, err := o.reviewer.Review(ctx, text)

	o.mu.Lock()
	if !o.machine.IsLatest(tok) {
		latest := o.machine.Latest()
		o.mu.Unlock()
		o.logger.Info("analysis.discard_stale", "token", tok, "latest", latest, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.AnalysisResult{}, fmt.Errorf("%w: analysis token %d", common.ErrSuperseded, tok)
	}
	if err != nil {
		stageErr := common.StageError(common.ErrAnalysisFailed, err)
		o.machine.Settle(tok, true)
		o.lastErr = stageErr
		o.mu.Unlock()

		o.logger.Error("analysis.failed", "token", tok, "error", err, "code", common.CodeOf(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds())
		o.notifier.Notify(notify.Notice{Level: notify.LevelError, Stage: notify.StageAnalysis, Message: "analysis failed: " + err.Error()})
		return entity.AnalysisResult{}, stageErr
	}
	stored := res.Clone()
	o.result = &stored
	o.machine.Settle(tok, false)
	o.mu.Unlock()

	o.logger.Info("analysis.ok", "token", tok, "clauses", len(res.RiskClauses), "elapsed_ms", time.Since(start).Milliseconds())
	o.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Stage: notify.StageAnalysis, Message: "analysis complete"})
	return res.Clone(), nil
}

func (o *Orchestrator) Status() constants.StageStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.Status()
}

// Result returns a copy of the current result, if any.
func (o *Orchestrator) Result() (entity.AnalysisResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return entity.AnalysisResult{}, false
	}
	return o.result.Clone(), true
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := Snapshot{
		Status: o.machine.Status(),
		Err:    o.lastErr,
		Token:  o.machine.Latest(),
		Text:   o.text,
	}
	if o.result != nil {
		r := o.result.Clone()
		s.Result = &r
	}
	return s
}
