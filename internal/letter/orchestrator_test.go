package letter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubDrafter struct {
	mu    sync.Mutex
	calls []entity.LetterRequest
	out   string
	err   error
}

func (s *stubDrafter) DraftLetter(_ context.Context, req entity.LetterRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.out, s.err
}

type memClipboard struct{ text string }

func (m *memClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

func newTestOrchestrator(d *stubDrafter, rec *notify.Recorder, cb Clipboard) *Orchestrator {
	o := NewOrchestrator(d, rec, quietLogger(), WithClipboard(cb))
	o.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return o
}

func TestGenerate_EmptyContextMakesNoRequest(t *testing.T) {
	d := &stubDrafter{out: "letter"}
	rec := &notify.Recorder{}
	o := newTestOrchestrator(d, rec, &memClipboard{})

	_, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.DepositRefund, Context: "  "})
	if !errors.Is(err, common.ErrEmptyContext) {
		t.Fatalf("err = %v, want ErrEmptyContext", err)
	}
	if len(d.calls) != 0 {
		t.Fatalf("drafter called %d times", len(d.calls))
	}
	if o.Status() != constants.StageIdle {
		t.Fatalf("status = %s", o.Status())
	}
	if lv := rec.Levels(notify.StageLetter); len(lv) != 1 || lv[0] != notify.LevelWarning {
		t.Fatalf("notices = %v", lv)
	}
}

func TestGenerate_InvalidDisputeType(t *testing.T) {
	d := &stubDrafter{out: "letter"}
	o := newTestOrchestrator(d, &notify.Recorder{}, &memClipboard{})

	_, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: "divorce", Context: "x"})
	if !errors.Is(err, common.ErrInvalidDisputeType) {
		t.Fatalf("err = %v, want ErrInvalidDisputeType", err)
	}
	if len(d.calls) != 0 {
		t.Fatalf("drafter called %d times", len(d.calls))
	}
}

func TestGenerate_SuccessThenFailureKeepsDraft(t *testing.T) {
	d := &stubDrafter{out: "Dear landlord,\nplease return my deposit."}
	rec := &notify.Recorder{}
	o := newTestOrchestrator(d, rec, &memClipboard{})

	req := entity.LetterRequest{DisputeType: constants.DepositRefund, Context: "deposit withheld"}
	got, err := o.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Content != d.out || got.DisputeType != constants.DepositRefund || got.GeneratedAt.IsZero() {
		t.Fatalf("draft = %+v", got)
	}
	if o.Status() != constants.StageSucceeded {
		t.Fatalf("status = %s", o.Status())
	}

	boom := errors.New("timeout")
	d.err = boom
	if _, err := o.Generate(context.Background(), req); !errors.Is(err, common.ErrLetterFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrLetterFailed wrapping cause", err)
	}
	if o.Status() != constants.StageFailed {
		t.Fatalf("status = %s", o.Status())
	}
	kept, ok := o.Draft()
	if !ok || kept.Content != "Dear landlord,\nplease return my deposit." {
		t.Fatalf("draft after failure = %+v, %v", kept, ok)
	}
	if !errors.Is(o.Err(), common.ErrLetterFailed) {
		t.Fatalf("Err() = %v", o.Err())
	}

	want := []notify.Level{notify.LevelSuccess, notify.LevelError}
	got2 := rec.Levels(notify.StageLetter)
	if len(got2) != len(want) || got2[0] != want[0] || got2[1] != want[1] {
		t.Fatalf("notices = %v, want %v", got2, want)
	}
}

func TestCopyAndExport_NoDraft(t *testing.T) {
	o := newTestOrchestrator(&stubDrafter{}, &notify.Recorder{}, &memClipboard{})
	if err := o.CopyToClipboard(); !errors.Is(err, common.ErrNoDraft) {
		t.Fatalf("copy err = %v, want ErrNoDraft", err)
	}
	if _, err := o.ExportAsFile(t.TempDir()); !errors.Is(err, common.ErrNoDraft) {
		t.Fatalf("export err = %v, want ErrNoDraft", err)
	}
}

func TestCopyAndExport_BlankDraft(t *testing.T) {
	o := newTestOrchestrator(&stubDrafter{out: "   "}, &notify.Recorder{}, &memClipboard{})
	if _, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.ConsumerRights, Context: "x"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := o.CopyToClipboard(); !errors.Is(err, common.ErrNoDraft) {
		t.Fatalf("copy err = %v, want ErrNoDraft", err)
	}
}

func TestCopyToClipboard(t *testing.T) {
	cb := &memClipboard{}
	o := newTestOrchestrator(&stubDrafter{out: "letter body"}, &notify.Recorder{}, cb)
	if _, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.SalaryArrears, Context: "unpaid"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := o.CopyToClipboard(); err != nil {
		t.Fatalf("CopyToClipboard: %v", err)
	}
	if cb.text != "letter body" {
		t.Fatalf("clipboard = %q", cb.text)
	}
}

func TestExportAsFile(t *testing.T) {
	o := newTestOrchestrator(&stubDrafter{out: "Dear **Sir**,\nline two"}, &notify.Recorder{}, &memClipboard{})
	if _, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.DepositRefund, Context: "x"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := t.TempDir()
	path, err := o.ExportAsFile(dir)
	if err != nil {
		t.Fatalf("ExportAsFile(dir): %v", err)
	}
	if path != filepath.Join(dir, constants.LetterFileName) {
		t.Fatalf("path = %s", path)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "Dear **Sir**,\nline two" {
		t.Fatalf("text export = %q", b)
	}

	htmlPath, err := o.ExportAsFile(filepath.Join(dir, "letter.html"))
	if err != nil {
		t.Fatalf("ExportAsFile(html): %v", err)
	}
	h, _ := os.ReadFile(htmlPath)
	for _, want := range []string{"<!DOCTYPE html>", "<strong>Sir</strong>", "<br"} {
		if !strings.Contains(string(h), want) {
			t.Fatalf("html export missing %q:\n%s", want, h)
		}
	}
}

type gatedDrafter struct {
	started chan string
	release map[string]chan string
}

func (g *gatedDrafter) DraftLetter(ctx context.Context, req entity.LetterRequest) (string, error) {
	g.started <- req.Context
	select {
	case out := <-g.release[req.Context]:
		return out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGenerate_LateReplyIsDiscarded(t *testing.T) {
	g := &gatedDrafter{
		started: make(chan string, 2),
		release: map[string]chan string{"first": make(chan string), "second": make(chan string)},
	}
	o := NewOrchestrator(g, nil, quietLogger(), WithClipboard(&memClipboard{}))

	firstErr := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.DepositRefund, Context: "first"})
		firstErr <- err
	}()
	<-g.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), entity.LetterRequest{DisputeType: constants.DepositRefund, Context: "second"})
		secondErr <- err
	}()
	<-g.started

	g.release["second"] <- "letter two"
	if err := <-secondErr; err != nil {
		t.Fatalf("second: %v", err)
	}
	g.release["first"] <- "letter one"
	if err := <-firstErr; !errors.Is(err, common.ErrSuperseded) {
		t.Fatalf("first err = %v, want ErrSuperseded", err)
	}

	d, ok := o.Draft()
	if !ok || d.Content != "letter two" {
		t.Fatalf("draft = %+v, %v", d, ok)
	}
	if o.Status() != constants.StageSucceeded {
		t.Fatalf("status = %s", o.Status())
	}
}
