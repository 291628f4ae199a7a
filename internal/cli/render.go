package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// SeparatorRow marks a horizontal rule between table sections, typically
// before a totals row.
const SeparatorRow = "---"

const titleWidth = 55

// Table is a bordered table for CLI output. The first column is left
// aligned and the rest are right aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(titleWidth).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(style(t.TextPrimary).Bold(true).Render(title))
}

// RenderTable renders t with lipgloss/table. Rows after a SeparatorRow are
// drawn bold.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	th := theme.Active

	cols := len(t.Headers)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range t.Rows {
		if isSeparator(r) {
			continue
		}
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	rows := make([][]string, 0, len(t.Rows))
	totalsFrom := len(t.Rows)
	separators := make(map[int]bool)
	for _, r := range t.Rows {
		cells := make([]string, cols)
		if isSeparator(r) {
			for i, w := range widths {
				cells[i] = strings.Repeat("─", w)
			}
			separators[len(rows)] = true
			totalsFrom = len(rows) + 1
		} else {
			copy(cells, r)
		}
		rows = append(rows, cells)
	}

	header := style(th.Accent).Bold(true).Padding(0, 1)
	cell := style(th.TextPrimary).Padding(0, 1)
	rule := style(th.TextDim).Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(style(th.TextDim)).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				s = header
			case separators[row]:
				return rule
			case row >= totalsFrom:
				s = cell.Bold(true)
			default:
				s = cell
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(style(th.Accent).Bold(true).Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n")
	return b.String()
}

func isSeparator(r []string) bool {
	return len(r) == 1 && r[0] == SeparatorRow
}

// RenderPercentBar renders a fixed-width bar for a 0-100 percentage.
// Values above 100 fill the bar and are drawn in red.
func RenderPercentBar(pct decimal.Decimal, width int) string {
	if width <= 0 {
		return ""
	}
	t := theme.Active
	ratio := max(pct.InexactFloat64()/100, 0)
	color := t.Green
	if ratio > 1 {
		ratio = 1
		color = t.Red
	}
	filled := int(ratio * float64(width))
	return style(color).Render(strings.Repeat("█", filled)) +
		style(t.TextDim).Render(strings.Repeat("░", width-filled))
}

// RenderHorizontalBar renders one labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue decimal.Decimal, maxWidth int) string {
	if !maxValue.IsPositive() {
		return "  " + label
	}
	n := max(int(value.Div(maxValue).InexactFloat64()*float64(maxWidth)), 0)
	return "  " + label + " " + style(theme.Active.Orange).Render(strings.Repeat("█", n))
}

// RenderBudgetStatus colors a budget status label.
func RenderBudgetStatus(s model.BudgetStatus) string {
	st := style(theme.Active.ForStatus(s))
	if s == model.BudgetOverBudget {
		st = st.Bold(true)
	}
	return st.Render(string(s))
}

// RenderAlertLevel colors an alert level label.
func RenderAlertLevel(l model.AlertLevel) string {
	return style(theme.Active.ForAlert(l)).Bold(l == model.AlertCritical).Render(string(l))
}

// Muted renders s in the muted text color.
func Muted(s string) string {
	return style(theme.Active.TextMuted).Render(s)
}

// Warn renders s in the warning color.
func Warn(s string) string {
	return style(theme.Active.Orange).Render(s)
}
