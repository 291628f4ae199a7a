package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	goals := a.dash.Goals
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(goals) == 0 {
		return components.ContentCard("Goals", muted.Render("No savings goals"), cw)
	}
	cur := a.currency()

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	inner := components.CardInnerWidth(cw)
	const titleW, statusW, moneyW, daysW = 22, 10, 26, 18
	barW := max(inner-titleW-statusW-moneyW-daysW-8, 10)

	var b strings.Builder
	for i, gp := range goals {
		if i > 0 {
			b.WriteString("\n")
		}
		style := rowStyle
		marker := "  "
		if i == a.goals.cursor {
			style = selStyle
			marker = "▸ "
		}
		if gp.Goal.Status != model.GoalActive {
			style = dimStyle
		}

		money := cli.FormatMoney(gp.Goal.CurrentAmount, cur) + " / " + cli.FormatMoney(gp.Goal.TargetAmount, cur)
		b.WriteString(style.Render(marker + fmt.Sprintf("%-*s", titleW-2, cli.Truncate(gp.Goal.Title, titleW-2))))
		b.WriteString(style.Render(fmt.Sprintf(" %-*s ", statusW, gp.Goal.Status)))
		b.WriteString(components.GoalBar(gp, barW))
		b.WriteString(style.Render(fmt.Sprintf(" %*s ", moneyW, money)))
		b.WriteString(muted.Render(fmt.Sprintf("%-*s", daysW, goalDays(gp))))
	}

	list := components.ContentCard(fmt.Sprintf("Goals [%d]", len(goals)), b.String(), cw)
	sel := goals[clamp(a.goals.cursor, 0, len(goals)-1)]
	return list + "\n" + components.ContentCard(sel.Goal.Title, a.goalDetail(sel, cur), cw)
}

func goalDays(gp model.GoalProgress) string {
	if gp.Goal.TargetDate.IsZero() {
		return "no deadline"
	}
	return cli.FormatDays(gp.DaysRemaining)
}

func (a App) goalDetail(gp model.GoalProgress, cur string) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	monthly := "-"
	if gp.RecommendedMonthlySaving != nil {
		monthly = cli.FormatMoney(*gp.RecommendedMonthlySaving, cur) + " / month"
	}

	rows := [][2]string{
		{"Target", cli.FormatMoney(gp.Goal.TargetAmount, cur)},
		{"Saved", cli.FormatMoney(gp.Goal.CurrentAmount, cur) + " (" + cli.FormatPercent(gp.Percentage) + ")"},
		{"Remaining", cli.FormatMoney(gp.Remaining, cur)},
		{"Deadline", cli.FormatDate(gp.Goal.TargetDate) + "  " + goalDays(gp)},
		{"Save", monthly},
		{"Priority", fmt.Sprintf("%d", gp.Goal.Priority)},
	}
	if p := gp.Goal.Plan; p != nil {
		rows = append(rows,
			[2]string{"Plan", cli.FormatMoney(p.MonthlySavingTarget, cur) + " / month for " + fmt.Sprintf("%d months", p.MonthsRemaining)},
		)
		if p.Strategy != "" {
			rows = append(rows, [2]string{"Strategy", p.Strategy})
		}
	}
	if gp.Goal.LinkedAccountID != "" {
		rows = append(rows, [2]string{"Account", string(gp.Goal.LinkedAccountID)})
	}
	if gp.Goal.Description != "" {
		rows = append(rows, [2]string{"Notes", gp.Goal.Description})
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label.Render(fmt.Sprintf("%-11s", r[0])))
		b.WriteString(value.Render(r[1]))
	}
	return b.String()
}
