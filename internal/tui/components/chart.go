package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []decimal.Decimal, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := decimal.Max(values[0], values...)
	if !peak.IsPositive() {
		peak = decimal.NewFromInt(1)
	}
	steps := decimal.NewFromInt(int64(len(blocks) - 1))

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v.Div(peak).Mul(steps).IntPart())
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}
	return style.Render(buf.String())
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value decimal.Decimal
	Text  string // rendered value, e.g. formatted money
}

// HBarChart renders labelled horizontal bars scaled to the largest value.
func HBarChart(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := decimal.Zero
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = decimal.Max(peak, b.Value)
	}
	labelW = min(labelW, 16)
	barW := width - labelW - textW - 2
	if barW < 4 {
		barW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(bars))
	for i, b := range bars {
		n := 0
		if peak.IsPositive() {
			n = int(b.Value.Div(peak).Mul(decimal.NewFromInt(int64(barW))).Round(0).IntPart())
		}
		n = min(max(n, 0), barW)
		label := b.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:labelW-1]) + "…"
		}
		lines[i] = labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
			spaceStyle.Render(" ") +
			barStyle.Render(strings.Repeat("█", n)) +
			spaceStyle.Render(strings.Repeat(" ", barW-n)) +
			spaceStyle.Render(" ") +
			textStyle.Render(fmt.Sprintf("%*s", textW, b.Text))
	}
	return strings.Join(lines, "\n")
}
