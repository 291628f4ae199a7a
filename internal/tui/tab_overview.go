package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

const overviewTopCategories = 8

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.dash
	cur := a.currency()
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	month := calendar.MonthKey(d.Reference)
	metrics := []components.Metric{
		{
			Label: "Total Balance",
			Value: cli.FormatMoney(d.TotalBalance, cur),
			Delta: fmt.Sprintf("%d active accounts", d.Accounts),
		},
		{
			Label: "Income " + month,
			Value: cli.FormatMoney(d.Month.Income, cur),
			Color: t.Green,
		},
		{
			Label: "Expenses " + month,
			Value: cli.FormatMoney(d.Month.Expenses, cur),
			Delta: fmt.Sprintf("%d transactions", d.Month.Count),
			Color: t.Red,
		},
		{
			Label: "Savings",
			Value: cli.FormatSigned(d.Month.Savings, cur),
			Delta: fmt.Sprintf("%d days left in month", calendar.DaysLeftInMonth(d.Reference)),
			Color: t.ForAmount(d.Month.Savings),
		},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Spending by category
	var spendBody string
	if len(d.Spending) == 0 {
		spendBody = muted.Render("No categorized spending this month")
	} else {
		n := min(len(d.Spending), overviewTopCategories)
		bars := make([]components.Bar, n)
		for i, cs := range d.Spending[:n] {
			bars[i] = components.Bar{
				Label: string(cs.CategoryID),
				Value: cs.Spent,
				Text:  cli.FormatMoney(cs.Spent, cur),
			}
		}
		w := cw
		if !a.isCompactLayout() {
			w = cw * 3 / 5
		}
		spendBody = components.HBarChart(bars, t.Orange, components.CardInnerWidth(w))
	}
	if len(a.daily) > 0 {
		spendBody += "\n\n" + muted.Render("Daily ") + components.Sparkline(a.daily, t.Accent)
	}

	// Alerts and estimates
	var side strings.Builder
	if len(d.Alerts) == 0 {
		side.WriteString(lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("✓ All budgets within limits"))
	} else {
		for i, al := range d.Alerts {
			if i > 0 {
				side.WriteString("\n")
			}
			lvl := lipgloss.NewStyle().Foreground(t.ForAlert(al.Level)).Background(t.Surface).Bold(true)
			side.WriteString(lvl.Render(fmt.Sprintf("▲ %-8s", al.Level)))
			side.WriteString(value.Render(fmt.Sprintf(" %s ", al.CategoryID)))
			side.WriteString(muted.Render(fmt.Sprintf("%s of %s",
				cli.FormatPercent(al.ThresholdPercentage), cli.FormatMoney(al.Amount, cur))))
		}
	}
	side.WriteString("\n\n")
	if d.Insights.Sufficient {
		side.WriteString(muted.Render("Income (est)      ") + value.Render(cli.FormatMoney(d.Insights.IncomeEstimate, cur)) + "\n")
		side.WriteString(muted.Render("Fixed costs (est) ") + value.Render(cli.FormatMoney(d.Insights.FixedCostsEstimate, cur)))
	} else {
		side.WriteString(muted.Render(fmt.Sprintf("Estimates need at least 5 transactions (have %d)", d.Insights.Transactions)))
	}
	if d.MixedCurrency() {
		side.WriteString("\n\n")
		side.WriteString(lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).
			Render("Mixed currencies: " + strings.Join(d.Currencies, ", ")))
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Spending by Category", spendBody, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Alerts & Estimates", side.String(), cw))
	} else {
		widths := []int{cw * 3 / 5, cw - cw*3/5}
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Spending by Category", spendBody, widths[0]),
			components.ContentCard("Alerts & Estimates", side.String(), widths[1]),
		}))
	}

	// Goals summary
	if len(d.Goals) > 0 {
		b.WriteString("\n")
		var gb strings.Builder
		barW := 20
		for i, gp := range d.Goals {
			if i >= 4 {
				break
			}
			if i > 0 {
				gb.WriteString("\n")
			}
			gb.WriteString(value.Render(fmt.Sprintf("%-20s ", cli.Truncate(gp.Goal.Title, 20))))
			gb.WriteString(components.GoalBar(gp, barW))
			gb.WriteString(muted.Render("  " + cli.FormatMoney(gp.Remaining, cur) + " to go"))
		}
		b.WriteString(components.ContentCard("Goals", gb.String(), cw))
	}

	return b.String()
}
