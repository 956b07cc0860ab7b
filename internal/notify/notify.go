package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level is the severity of a user-facing notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Stage names used on notices.
const (
	StageIngestion = "ingestion"
	StageAnalysis  = "analysis"
	StageLetter    = "letter"
)

// Notice is a message meant for the user, separate from operational logs.
type Notice struct {
	Level   Level
	Stage   string
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notice) {
	lvl := slog.LevelInfo
	switch n.Level {
	case LevelWarning:
		lvl = slog.LevelWarn
	case LevelError:
		lvl = slog.LevelError
	}
	l.logger.Log(context.Background(), lvl, "notice", "stage", n.Stage, "level", string(n.Level), "message", n.Message)
}

// Recorder keeps every notice in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Levels returns the recorded levels for a stage, in order.
func (r *Recorder) Levels(stage string) []Level {
	var out []Level
	for _, n := range r.Notices() {
		if n.Stage == stage {
			out = append(out, n.Level)
		}
	}
	return out
}

// Multi fans a notice out to several notifiers.
func Multi(ns ...Notifier) Notifier {
	return Func(func(n Notice) {
		for _, x := range ns {
			if x != nil {
				x.Notify(n)
			}
		}
	})
}
