package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/model"
)

// daysPerMonth is the month length used for saving recommendations. It is an
// approximation, not calendar-accurate.
var daysPerMonth = decimal.NewFromInt(30)

// ProgressFor computes progress figures for g as of today.
func ProgressFor(g model.Goal, today time.Time) model.GoalProgress {
	p := model.GoalProgress{
		Goal:       g,
		Percentage: decimal.Zero,
	}
	if g.TargetAmount.IsPositive() {
		p.Percentage = g.CurrentAmount.Mul(hundred).Div(g.TargetAmount)
	}

	p.RawRemaining = g.TargetAmount.Sub(g.CurrentAmount)
	p.Remaining = decimal.Max(p.RawRemaining, decimal.Zero)
	p.DaysRemaining = calendar.DaysBetween(today, g.TargetDate)

	if p.RawRemaining.IsPositive() && p.DaysRemaining > 0 {
		// remaining / (days/30), rearranged to keep the division exact.
		monthly := p.RawRemaining.Mul(daysPerMonth).Div(decimal.NewFromInt(int64(p.DaysRemaining)))
		p.RecommendedMonthlySaving = &monthly
	}

	p.Tone = toneFor(g.Status, p.Percentage)
	return p
}

func toneFor(status model.GoalStatus, pct decimal.Decimal) model.ProgressTone {
	switch status {
	case model.GoalCompleted:
		return model.ToneSuccess
	case model.GoalPaused, model.GoalCancelled:
		return model.ToneNeutral
	}
	switch {
	case pct.LessThan(decimal.NewFromInt(25)):
		return model.ToneLow
	case pct.LessThan(decimal.NewFromInt(50)):
		return model.ToneMedium
	case pct.LessThan(decimal.NewFromInt(75)):
		return model.ToneHigh
	default:
		return model.ToneNearly
	}
}

// SortGoals returns a copy of goals ordered active first, completed last,
// then by ascending priority. Equal entries keep their input order.
func SortGoals(goals []model.Goal) []model.Goal {
	out := make([]model.Goal, len(goals))
	copy(out, goals)
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := goalBucket(out[i].Status), goalBucket(out[j].Status)
		if bi != bj {
			return bi < bj
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}

func goalBucket(s model.GoalStatus) int {
	switch s {
	case model.GoalActive:
		return 0
	case model.GoalCompleted:
		return 2
	default:
		return 1
	}
}

// GoalsProgress sorts goals and computes progress for each.
func GoalsProgress(goals []model.Goal, today time.Time) []model.GoalProgress {
	sorted := SortGoals(goals)
	out := make([]model.GoalProgress, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, ProgressFor(g, today))
	}
	return out
}
