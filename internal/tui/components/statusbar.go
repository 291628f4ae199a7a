package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports about the loaded data.
type StatusInfo struct {
	Month       string
	Source      string
	LoadTime    string
	Alerts      int
	Refreshing  bool
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	alertStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	left := base.Render(" ") + keyStyle.Render("?") + base.Render(" help  ") +
		keyStyle.Render("r") + base.Render(" refresh  ") +
		keyStyle.Render("q") + base.Render(" quit")
	if info.Alerts > 0 {
		left += base.Render("  ") + alertStyle.Render(fmt.Sprintf("▲ %d alerts", info.Alerts))
	}

	var parts []string
	if info.Month != "" {
		parts = append(parts, info.Month)
	}
	if info.Source != "" {
		parts = append(parts, info.Source)
	}
	switch {
	case info.Refreshing:
		parts = append(parts, "refreshing…")
	case info.LoadTime != "":
		parts = append(parts, "loaded in "+info.LoadTime)
	}
	if info.AutoRefresh {
		parts = append(parts, "auto")
	}
	right := base.Render(strings.Join(parts, " · ") + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
