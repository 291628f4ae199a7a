package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

var hundred = decimal.NewFromInt(100)

// ProgressBar renders the loading bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// Ratio converts a 0-100 percentage into a bar fill in [0, 1].
func Ratio(pct decimal.Decimal) float64 {
	f := pct.Div(hundred).InexactFloat64()
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func solidBar(color lipgloss.Color, width int, fill float64) string {
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar.ViewAs(fill)
}

// BudgetBar renders budget consumption colored by status. The fill is
// capped at the budget while the label keeps the real percentage.
func BudgetBar(bc model.BudgetConsumption, width int) string {
	t := theme.Active
	color := t.ForStatus(bc.Status)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return solidBar(color, width, Ratio(bc.DisplayPercentage)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4s%%", bc.Percentage.StringFixed(0)))
}

// GoalBar renders goal progress colored by its tone band.
func GoalBar(gp model.GoalProgress, width int) string {
	t := theme.Active
	color := t.ForTone(gp.Tone)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return solidBar(color, width, Ratio(gp.Percentage)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4s%%", gp.Percentage.StringFixed(0)))
}
