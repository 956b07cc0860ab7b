package letter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
	"github.com/joseph-ayodele/contract-sentinel/internal/stage"
)

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Orchestrator drafts dispute letters. It runs independently of analysis.
type Orchestrator struct {
	drafter   collab.LetterDrafter
	notifier  notify.Notifier
	clipboard Clipboard
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	machine stage.Machine
	draft   *entity.LetterDraft
	lastErr error
}

type Option func(*Orchestrator)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clipboard = c
		}
	}
}

func NewOrchestrator(drafter collab.LetterDrafter, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	o := &Orchestrator{
		drafter:   drafter,
		notifier:  notifier,
		clipboard: systemClipboard{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate validates req locally, then requests a letter. A successful reply
// replaces the current draft; a failed one leaves it in place.
func (o *Orchestrator) Generate(ctx context.Context, req entity.LetterRequest) (entity.LetterDraft, error) {
	if strings.TrimSpace(req.Context) == "" {
		o.warn("please describe the situation")
		return entity.LetterDraft{}, common.ErrEmptyContext
	}
	if !req.DisputeType.Valid() {
		o.warn("unknown dispute type " + string(req.DisputeType))
		return entity.LetterDraft{}, fmt.Errorf("%w: %q", common.ErrInvalidDisputeType, req.DisputeType)
	}

	o.mu.Lock()
	tok := o.machine.Begin()
	o.lastErr = nil
	o.mu.Unlock()

	start := time.Now()
	o.logger.Info("letter.generate", "token", tok, "dispute_type", string(req.DisputeType), "context_len", len(req.Context))

	content, err := o.drafter.DraftLetter(ctx, req)

	o.mu.Lock()
	if !o.machine.IsLatest(tok) {
		o.mu.Unlock()
		o.logger.Info("letter.discard_stale", "token", tok)
		return entity.LetterDraft{}, fmt.Errorf("%w: letter token %d", common.ErrSuperseded, tok)
	}
	if err != nil {
		stageErr := common.StageError(common.ErrLetterFailed, err)
		o.machine.Settle(tok, true)
		o.lastErr = stageErr
		o.mu.Unlock()

		o.logger.Error("letter.failed", "token", tok, "error", err, "code", common.CodeOf(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds())
		o.notifier.Notify(notify.Notice{Level: notify.LevelError, Stage: notify.StageLetter, Message: "letter generation failed: " + err.Error()})
		return entity.LetterDraft{}, stageErr
	}
	d := entity.LetterDraft{Content: content, DisputeType: req.DisputeType, GeneratedAt: o.now()}
	o.draft = &d
	o.machine.Settle(tok, false)
	o.mu.Unlock()

	o.logger.Info("letter.ok", "token", tok, "letter_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	o.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Stage: notify.StageLetter, Message: "letter generated"})
	return d, nil
}

// Draft returns the current draft, if any.
func (o *Orchestrator) Draft() (entity.LetterDraft, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draft == nil {
		return entity.LetterDraft{}, false
	}
	return *o.draft, true
}

func (o *Orchestrator) Status() constants.StageStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.Status()
}

// Err is the failure of the latest request, if it failed.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// CopyToClipboard places the draft on the clipboard.
func (o *Orchestrator) CopyToClipboard() error {
	d, err := o.requireDraft()
	if err != nil {
		return err
	}
	if err := o.clipboard.WriteAll(d.Content); err != nil {
		o.logger.Error("letter.copy_failed", "error", err)
		o.notifier.Notify(notify.Notice{Level: notify.LevelError, Stage: notify.StageLetter, Message: "copy failed: " + err.Error()})
		return fmt.Errorf("copy letter: %w", err)
	}
	o.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Stage: notify.StageLetter, Message: "copied to clipboard"})
	return nil
}

// ExportAsFile writes the draft to path and returns the file written.
func (o *Orchestrator) ExportAsFile(path string) (string, error) {
	d, err := o.requireDraft()
	if err != nil {
		return "", err
	}
	out, err := writeDraft(path, d.Content)
	if err != nil {
		o.logger.Error("letter.export_failed", "path", path, "error", err)
		o.notifier.Notify(notify.Notice{Level: notify.LevelError, Stage: notify.StageLetter, Message: "export failed: " + err.Error()})
		return "", err
	}
	o.logger.Info("letter.exported", "path", out, "bytes", len(d.Content))
	o.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Stage: notify.StageLetter, Message: "letter saved to " + out})
	return out, nil
}

func (o *Orchestrator) requireDraft() (entity.LetterDraft, error) {
	d, ok := o.Draft()
	if !ok || strings.TrimSpace(d.Content) == "" {
		o.warn("no letter to use yet")
		return entity.LetterDraft{}, common.ErrNoDraft
	}
	return d, nil
}

func (o *Orchestrator) warn(msg string) {
	o.notifier.Notify(notify.Notice{Level: notify.LevelWarning, Stage: notify.StageLetter, Message: msg})
}
