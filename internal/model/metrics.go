package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotals holds income and expense sums over a set of transactions.
type PeriodTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
	Count    int             `json:"count"`
}

// CategorySpend holds total expenses for one category.
type CategorySpend struct {
	CategoryID CategoryID      `json:"category_id"`
	Spent      decimal.Decimal `json:"spent"`
	Count      int             `json:"count"`
}

// InsightEstimates are the rough figures fed to the insight generator.
type InsightEstimates struct {
	IncomeEstimate     decimal.Decimal `json:"income_estimate"`
	FixedCostsEstimate decimal.Decimal `json:"fixed_costs_estimate"`
	Transactions       int             `json:"transactions"`
	Sufficient         bool            `json:"sufficient"`
}

// Dashboard is the full derived view of one snapshot at a reference time.
type Dashboard struct {
	Reference    time.Time           `json:"reference"`
	TotalBalance decimal.Decimal     `json:"total_balance"`
	Currencies   []string            `json:"currencies"`
	Accounts     int                 `json:"accounts"`
	Month        PeriodTotals        `json:"month"`
	Budgets      []BudgetConsumption `json:"budgets"`
	Goals        []GoalProgress      `json:"goals"`
	Spending     []CategorySpend     `json:"spending"`
	Insights     InsightEstimates    `json:"insights"`
	Alerts       []BudgetAlert       `json:"alerts"`
}

// MixedCurrency reports whether active accounts use more than one currency.
func (d Dashboard) MixedCurrency() bool { return len(d.Currencies) > 1 }
