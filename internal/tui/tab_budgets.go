package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

var hundred = decimal.NewFromInt(100)

func (a App) renderBudgetsTab(cw int) string {
	t := theme.Active
	budgets := a.dash.Budgets
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(budgets) == 0 {
		return components.ContentCard("Budgets", muted.Render("No active budgets this month"), cw)
	}

	listW := cw
	if !a.isCompactLayout() {
		listW = cw * 2 / 3
	}
	inner := components.CardInnerWidth(listW)
	cur := a.currency()

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	const catW, moneyW = 16, 24
	barW := max(inner-catW-moneyW-10, 8)

	var list strings.Builder
	list.WriteString(headStyle.Render(fmt.Sprintf("%-*s %-*s %*s", catW, "Category", barW+6, "Used", moneyW, "Spent / Budget")))
	for i, bc := range budgets {
		list.WriteString("\n")
		style := rowStyle
		marker := "  "
		if i == a.budgets.cursor {
			style = selStyle
			marker = "▸ "
		}
		money := cli.FormatMoney(bc.Spent, cur) + " / " + cli.FormatMoney(bc.Budget.Amount, cur)
		list.WriteString(style.Render(marker + fmt.Sprintf("%-*s", catW-2, cli.Truncate(string(bc.Budget.CategoryID), catW-2))))
		list.WriteString(style.Render(" "))
		list.WriteString(components.BudgetBar(bc, barW))
		list.WriteString(style.Render(fmt.Sprintf(" %*s", moneyW, money)))
	}

	over, warn := 0, 0
	for _, bc := range budgets {
		switch bc.Status {
		case model.BudgetOverBudget:
			over++
		case model.BudgetWarning:
			warn++
		}
	}
	title := fmt.Sprintf("Budgets [%d]  %d over · %d warning", len(budgets), over, warn)
	listCard := components.ContentCard(title, list.String(), listW)

	sel := budgets[clamp(a.budgets.cursor, 0, len(budgets)-1)]
	if a.isCompactLayout() {
		return listCard + "\n" + components.ContentCard("Budget "+string(sel.Budget.ID), a.budgetDetail(sel), cw)
	}
	return components.CardRow([]string{
		listCard,
		components.ContentCard("Budget "+string(sel.Budget.ID), a.budgetDetail(sel), cw-listW),
	})
}

func (a App) budgetDetail(bc model.BudgetConsumption) string {
	t := theme.Active
	cur := a.currency()
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	status := lipgloss.NewStyle().Foreground(t.ForStatus(bc.Status)).Background(t.Surface).Bold(true)

	period := "calendar month"
	if !bc.Budget.PeriodStart.IsZero() {
		period = cli.FormatDate(bc.Budget.PeriodStart) + " → " + cli.FormatDate(bc.Budget.PeriodEnd)
	}

	rows := [][2]string{
		{"Category", string(bc.Budget.CategoryID)},
		{"Period", period},
		{"Budget", cli.FormatMoney(bc.Budget.Amount, cur)},
		{"Spent", cli.FormatMoney(bc.Spent, cur)},
		{"Remaining", cli.FormatSigned(bc.Remaining, cur)},
		{"Used", cli.FormatPercent(bc.Percentage)},
		{"Transactions", fmt.Sprintf("%d", bc.Matched)},
		{"Warning at", cli.FormatPercent(bc.Budget.Warning().Mul(hundred))},
		{"Critical at", cli.FormatPercent(bc.Budget.Critical().Mul(hundred))},
	}

	var b strings.Builder
	b.WriteString(status.Render(string(bc.Status)))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(label.Render(fmt.Sprintf("%-13s", r[0])))
		b.WriteString(value.Render(r[1]))
	}
	return b.String()
}
