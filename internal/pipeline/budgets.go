package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/model"
)

// ConsumeBudget computes how much of b the month of now has used.
//
// Matching transactions are expenses in b's category dated in the calendar
// month of now. The budget's own PeriodStart/PeriodEnd are not consulted.
// A budget without a category matches nothing.
func ConsumeBudget(b model.Budget, txs []model.Transaction, now time.Time) model.BudgetConsumption {
	c := model.BudgetConsumption{
		Budget:     b,
		Spent:      decimal.Zero,
		Percentage: decimal.Zero,
	}

	if b.CategoryID != "" {
		for _, t := range txs {
			if t.CategoryID != b.CategoryID || !t.IsExpense() || !calendar.SameMonth(t.Date, now) {
				continue
			}
			c.Spent = c.Spent.Add(t.Amount.Abs())
			c.Matched++
		}
	}

	c.Remaining = b.Amount.Sub(c.Spent)
	if b.Amount.IsPositive() {
		c.Percentage = c.Spent.Mul(hundred).Div(b.Amount)
	}
	c.DisplayPercentage = decimal.Min(c.Percentage, hundred)

	switch {
	case c.Spent.GreaterThan(b.Amount):
		c.Status = model.BudgetOverBudget
	case c.Percentage.GreaterThanOrEqual(b.Warning().Mul(hundred)):
		c.Status = model.BudgetWarning
	default:
		c.Status = model.BudgetOK
	}
	return c
}

// ConsumeBudgets applies ConsumeBudget to every budget, preserving order.
func ConsumeBudgets(budgets []model.Budget, txs []model.Transaction, now time.Time) []model.BudgetConsumption {
	out := make([]model.BudgetConsumption, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, ConsumeBudget(b, txs, now))
	}
	return out
}

// EvaluateAlerts checks every active budget against its thresholds.
//
// Unlike the budget status, alert levels compare the spend ratio with
// greater-or-equal: spending exactly the allotment is critical.
func EvaluateAlerts(budgets []model.Budget, txs []model.Transaction, now time.Time) []model.BudgetAlert {
	month := calendar.MonthKey(now)
	var alerts []model.BudgetAlert
	for _, b := range budgets {
		if !b.IsActive || !b.Amount.IsPositive() {
			continue
		}
		c := ConsumeBudget(b, txs, now)
		ratio := c.Spent.Div(b.Amount)

		alert := model.BudgetAlert{
			BudgetID:            b.ID,
			CategoryID:          b.CategoryID,
			ThresholdPercentage: c.Percentage,
			Spent:               c.Spent,
			Amount:              b.Amount,
			Month:               month,
		}
		switch {
		case ratio.GreaterThanOrEqual(b.Critical()):
			alert.Level = model.AlertCritical
			alert.Type = model.NotifyBudgetExceeded
			alert.Threshold = b.Critical().Mul(hundred)
		case ratio.GreaterThanOrEqual(b.Warning()):
			alert.Level = model.AlertWarning
			alert.Type = model.NotifyBudgetWarning
			alert.Threshold = b.Warning().Mul(hundred)
		default:
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
