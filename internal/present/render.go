package present

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	affirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	adviceStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	badgeStyles = map[Badge]lipgloss.Style{
		BadgeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		BadgeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
		BadgeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
	}
)

// Render formats a view for a terminal of the given width.
func Render(v View, width int) string {
	width = max(40, width)
	switch v.Mode {
	case ModeLoading:
		return mutedStyle.Render("Analyzing contract...")
	case ModePlaceholder:
		return mutedStyle.Render("No analysis yet. Submit pages or text to start a review.")
	}

	block := lipgloss.NewStyle().Width(width)
	parts := []string{titleStyle.Render(v.Title)}

	if v.NoRiskFound {
		parts = append(parts, affirmStyle.Render(v.Affirmation))
	}
	for _, g := range v.Groups {
		parts = append(parts, "", badgeStyles[BadgeFor(g.Level)].Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Items))))
		for _, it := range g.Items {
			parts = append(parts, block.Render(renderItem(it)))
		}
	}
	if strings.TrimSpace(v.ActionAdvice) != "" {
		parts = append(parts, "", adviceStyle.Width(width-2).Render("Advice: "+v.ActionAdvice))
	}
	parts = append(parts, "", mutedStyle.Width(width).Render(Disclaimer))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderItem(it Item) string {
	lines := []string{
		fmt.Sprintf("%d. [%s] %s", it.Index+1, badgeStyles[it.Badge].Render(it.LevelLabel), it.OriginalText),
	}
	if it.Reason != "" {
		lines = append(lines, "   Reason: "+it.Reason)
	}
	if it.Suggestion != "" {
		lines = append(lines, "   Suggestion: "+it.Suggestion)
	}
	return strings.Join(lines, "\n")
}
