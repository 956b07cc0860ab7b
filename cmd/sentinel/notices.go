package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
)

var noticeStyles = map[notify.Level]lipgloss.Style{
	notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
	notify.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")),
	notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

// newNoticePrinter writes one styled line per notice.
func newNoticePrinter(w io.Writer) notify.Notifier {
	var mu sync.Mutex
	return notify.Func(func(n notify.Notice) {
		style, ok := noticeStyles[n.Level]
		if !ok {
			style = lipgloss.NewStyle()
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, style.Render(fmt.Sprintf("[%s] %s", n.Stage, n.Message)))
	})
}
