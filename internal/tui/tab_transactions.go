package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// txState holds the transactions tab state.
type txState struct {
	cursor    int
	offset    int
	searching bool
	input     textinput.Model
	query     string
	filterIdx int // index into model.TypeFilters
}

func newTxState() txState {
	return txState{input: newSearchInput()}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description or merchant"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	return ti
}

func (s *txState) filter() model.TypeFilter {
	return model.TypeFilters[s.filterIdx%len(model.TypeFilters)]
}

func (s *txState) move(delta, n int) {
	s.cursor = clamp(s.cursor+delta, 0, n-1)
}

func (s *txState) clampCursor(n int) {
	s.cursor = clamp(s.cursor, 0, n-1)
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

func (s *txState) reset() {
	s.cursor = 0
	s.offset = 0
}

// filteredTransactions applies the search query and type filter, newest first.
func (a App) filteredTransactions() []model.Transaction {
	return pipeline.FilterTransactions(a.txs, a.txState.query, a.txState.filter())
}

// updateTransactionsKey handles keys specific to the transactions list.
// ok is false when the key should fall through to global handling.
func (a App) updateTransactionsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "/":
		a.txState.searching = true
		a.txState.input = newSearchInput()
		a.txState.input.SetValue(a.txState.query)
		a.txState.input.Focus()
		return a, a.txState.input.Cursor.BlinkCmd(), true
	case "f":
		a.txState.filterIdx = (a.txState.filterIdx + 1) % len(model.TypeFilters)
		a.txState.reset()
		return a, nil, true
	case "esc":
		if a.txState.query != "" || a.txState.filterIdx != 0 {
			a.txState.query = ""
			a.txState.filterIdx = 0
			a.txState.reset()
		}
		return a, nil, true
	case "home":
		a.txState.reset()
		return a, nil, true
	case "end":
		a.txState.cursor = max(len(a.filteredTransactions())-1, 0)
		return a, nil, true
	case "ctrl+d", "pgdown":
		a.txState.move(a.pageSize(), len(a.filteredTransactions()))
		return a, nil, true
	case "ctrl+u", "pgup":
		a.txState.move(-a.pageSize(), len(a.filteredTransactions()))
		return a, nil, true
	}
	return a, nil, false
}

func (a App) pageSize() int {
	return max((a.height-8)/2, 1)
}

func (a App) updateTransactionSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.txState.query = strings.TrimSpace(a.txState.input.Value())
		a.txState.searching = false
		a.txState.reset()
		return a, nil
	case "esc":
		a.txState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.txState.input, cmd = a.txState.input.Update(msg)
	return a, cmd
}

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	cur := a.currency()
	txs := a.filteredTransactions()
	ts := a.txState

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	pill := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	inner := components.CardInnerWidth(cw)
	const dateW, catW, statusW, amountW = 10, 14, 9, 14
	descW := max(inner-dateW-catW-statusW-amountW-6, 12)

	var b strings.Builder
	switch {
	case ts.searching:
		b.WriteString(ts.input.View())
	case ts.query != "":
		b.WriteString(muted.Render("search ") + pill.Render(ts.query) + muted.Render("  [esc] clear"))
	default:
		b.WriteString(muted.Render("[/] search  [f] filter"))
	}
	b.WriteString(muted.Render("   type ") + pill.Render(string(ts.filter())))
	b.WriteString("\n\n")

	if len(txs) == 0 {
		b.WriteString(muted.Render("No matching transactions"))
		return components.ContentCard("Transactions", b.String(), cw)
	}

	b.WriteString(head.Render(fmt.Sprintf("%-*s %-*s %-*s %-*s %*s",
		dateW, "Date", descW, "Description", catW, "Category", statusW, "Status", amountW, "Amount")))

	visible := max(h-9, 3)
	offset := ts.offset
	if ts.cursor < offset {
		offset = ts.cursor
	}
	if ts.cursor >= offset+visible {
		offset = ts.cursor - visible + 1
	}
	end := min(offset+visible, len(txs))

	for i := offset; i < end; i++ {
		tx := txs[i]
		style := row
		if i == ts.cursor {
			style = sel
		}
		desc := tx.Description
		if tx.MerchantName != "" && !strings.EqualFold(tx.MerchantName, desc) {
			desc = tx.MerchantName + " · " + desc
		}
		if tx.IsRecurring {
			desc = "↻ " + desc
		}
		amount := lipgloss.NewStyle().Foreground(t.ForAmount(tx.Amount)).Background(style.GetBackground())
		if i == ts.cursor {
			amount = amount.Bold(true)
		}

		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%-*s %-*s %-*s %-*s ",
			dateW, cli.FormatDate(tx.Date),
			descW, cli.Truncate(desc, descW),
			catW, cli.Truncate(string(tx.CategoryID), catW),
			statusW, strings.ToLower(string(tx.Status)))))
		b.WriteString(amount.Render(fmt.Sprintf("%*s", amountW, cli.FormatSigned(tx.Amount, tx.Currency))))
	}

	totals := pipeline.Totals(txs)
	b.WriteString("\n\n")
	b.WriteString(muted.Render(fmt.Sprintf("%d of %d  ·  in ", ts.cursor+1, len(txs))))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render(cli.FormatMoney(totals.Income, cur)))
	b.WriteString(muted.Render("  out "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(cli.FormatMoney(totals.Expenses, cur)))
	b.WriteString(muted.Render("  net "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.ForAmount(totals.Savings)).Background(t.Surface).Render(cli.FormatSigned(totals.Savings, cur)))

	return components.ContentCard(fmt.Sprintf("Transactions [%d]", len(txs)), b.String(), cw)
}
