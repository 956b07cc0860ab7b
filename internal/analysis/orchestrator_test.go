package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubReviewer struct {
	mu    sync.Mutex
	calls []string
	res   entity.AnalysisResult
	err   error
}

func (s *stubReviewer) Review(_ context.Context, text string) (entity.AnalysisResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	return s.res, s.err
}

// gatedReviewer blocks each call until its text is released.
type gatedReviewer struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
}

func newGatedReviewer(texts ...string) *gatedReviewer {
	g := &gatedReviewer{gates: map[string]chan struct{}{}, started: make(chan string, len(texts))}
	for _, t := range texts {
		g.gates[t] = make(chan struct{})
	}
	return g
}

func (g *gatedReviewer) Review(_ context.Context, text string) (entity.AnalysisResult, error) {
	g.mu.Lock()
	gate := g.gates[text]
	g.mu.Unlock()
	g.started <- text
	<-gate
	return entity.AnalysisResult{ActionAdvice: "advice for " + text}, nil
}

func (g *gatedReviewer) release(text string) { close(g.gates[text]) }

func waitStarted(t *testing.T, g *gatedReviewer, want string) {
	t.Helper()
	select {
	case got := <-g.started:
		if got != want {
			t.Fatalf("started %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("review of %q never started", want)
	}
}

func TestSubmit_EmptyTextMakesNoRequest(t *testing.T) {
	rev := &stubReviewer{}
	rec := &notify.Recorder{}
	o := NewOrchestrator(rev, rec, quietLogger())

	for _, text := range []string{"", "   \n\t"} {
		if _, err := o.Submit(context.Background(), text); !errors.Is(err, common.ErrEmptyText) {
			t.Fatalf("Submit(%q) err = %v, want ErrEmptyText", text, err)
		}
	}
	if len(rev.calls) != 0 {
		t.Fatalf("reviewer called %d times", len(rev.calls))
	}
	if got := o.Status(); got != constants.StageIdle {
		t.Fatalf("status = %s, want IDLE", got)
	}
	if diff := cmp.Diff([]notify.Level{notify.LevelWarning, notify.LevelWarning}, rec.Levels(notify.StageAnalysis)); diff != "" {
		t.Fatalf("notices (-want +got):\n%s", diff)
	}
}

func TestSubmit_Success(t *testing.T) {
	want := entity.AnalysisResult{
		RiskClauses:  []entity.RiskClause{{OriginalText: "a", RiskLevel: constants.RiskHigh}},
		ActionAdvice: "negotiate",
	}
	rev := &stubReviewer{res: want}
	rec := &notify.Recorder{}
	o := NewOrchestrator(rev, rec, quietLogger())

	got, err := o.Submit(context.Background(), "contract")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result (-want +got):\n%s", diff)
	}

	snap := o.Snapshot()
	if snap.Status != constants.StageSucceeded || snap.Result == nil || snap.Text != "contract" || snap.Token != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if diff := cmp.Diff(want, *snap.Result); diff != "" {
		t.Fatalf("stored (-want +got):\n%s", diff)
	}

	// Mutating the returned copy must not touch the stored result.
	got.RiskClauses[0].OriginalText = "changed"
	if r, _ := o.Result(); r.RiskClauses[0].OriginalText != "a" {
		t.Fatalf("stored result was mutated")
	}
	if diff := cmp.Diff([]notify.Level{notify.LevelSuccess}, rec.Levels(notify.StageAnalysis)); diff != "" {
		t.Fatalf("notices (-want +got):\n%s", diff)
	}
}

func TestSubmit_FailureClearsResult(t *testing.T) {
	rev := &stubReviewer{res: entity.AnalysisResult{ActionAdvice: "first"}}
	rec := &notify.Recorder{}
	o := NewOrchestrator(rev, rec, quietLogger())

	if _, err := o.Submit(context.Background(), "one"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	boom := errors.New("connection refused")
	rev.err = boom
	_, err := o.Submit(context.Background(), "two")
	if !errors.Is(err, common.ErrAnalysisFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrAnalysisFailed wrapping cause", err)
	}

	snap := o.Snapshot()
	if snap.Status != constants.StageFailed {
		t.Fatalf("status = %s, want FAILED", snap.Status)
	}
	if snap.Result != nil {
		t.Fatalf("result = %+v, want nil", snap.Result)
	}
	if !errors.Is(snap.Err, common.ErrAnalysisFailed) {
		t.Fatalf("snapshot err = %v", snap.Err)
	}
	if len(rev.calls) != 2 {
		t.Fatalf("calls = %d, want 2 (no retry)", len(rev.calls))
	}
	if diff := cmp.Diff([]notify.Level{notify.LevelSuccess, notify.LevelError}, rec.Levels(notify.StageAnalysis)); diff != "" {
		t.Fatalf("notices (-want +got):\n%s", diff)
	}
}

func TestSubmit_PendingClearsPreviousResult(t *testing.T) {
	g := newGatedReviewer("second")
	o := NewOrchestrator(&stubReviewer{res: entity.AnalysisResult{ActionAdvice: "first"}}, nil, quietLogger())
	if _, err := o.Submit(context.Background(), "first"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	o.reviewer = g
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Submit(context.Background(), "second")
	}()
	waitStarted(t, g, "second")

	snap := o.Snapshot()
	if snap.Status != constants.StagePending || snap.Result != nil {
		t.Fatalf("while pending: %+v", snap)
	}
	g.release("second")
	<-done
}

func TestSubmit_LatestSubmissionWins(t *testing.T) {
	g := newGatedReviewer("t1", "t2")
	o := NewOrchestrator(g, nil, quietLogger())

	errs := make(chan error, 2)
	go func() {
		_, err := o.Submit(context.Background(), "t1")
		errs <- err
	}()
	waitStarted(t, g, "t1")

	go func() {
		_, err := o.Submit(context.Background(), "t2")
		errs <- err
	}()
	waitStarted(t, g, "t2")

	// t2 resolves first, then t1.
	g.release("t2")
	if err := <-errs; err != nil {
		t.Fatalf("t2: %v", err)
	}
	g.release("t1")
	if err := <-errs; !errors.Is(err, common.ErrSuperseded) {
		t.Fatalf("t1 err = %v, want ErrSuperseded", err)
	}

	snap := o.Snapshot()
	if snap.Status != constants.StageSucceeded || snap.Result == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Result.ActionAdvice != "advice for t2" {
		t.Fatalf("advice = %q, want t2's", snap.Result.ActionAdvice)
	}
}

func TestSubmit_StaleResolvingFirstDoesNotSettle(t *testing.T) {
	g := newGatedReviewer("t1", "t2")
	o := NewOrchestrator(g, nil, quietLogger())

	errs := make(chan error, 2)
	go func() {
		_, err := o.Submit(context.Background(), "t1")
		errs <- err
	}()
	waitStarted(t, g, "t1")
	go func() {
		_, err := o.Submit(context.Background(), "t2")
		errs <- err
	}()
	waitStarted(t, g, "t2")

	g.release("t1")
	if err := <-errs; !errors.Is(err, common.ErrSuperseded) {
		t.Fatalf("t1 err = %v, want ErrSuperseded", err)
	}
	if got := o.Status(); got != constants.StagePending {
		t.Fatalf("status after stale reply = %s, want PENDING", got)
	}

	g.release("t2")
	if err := <-errs; err != nil {
		t.Fatalf("t2: %v", err)
	}
	if r, ok := o.Result(); !ok || r.ActionAdvice != "advice for t2" {
		t.Fatalf("result = %+v, %v", r, ok)
	}
}
