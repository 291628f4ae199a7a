package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default budget thresholds, as fractions of the budget amount.
var (
	DefaultWarningThreshold  = decimal.RequireFromString("0.8")
	DefaultCriticalThreshold = decimal.NewFromInt(1)
)

// Budget caps spending in one category.
type Budget struct {
	ID                BudgetID        `json:"id"`
	CategoryID        CategoryID      `json:"category_id"`
	Amount            decimal.Decimal `json:"amount" hash:"string"`
	PeriodStart       time.Time       `json:"period_start" hash:"string"`
	PeriodEnd         time.Time       `json:"period_end" hash:"string"`
	WarningThreshold  decimal.Decimal `json:"warning_threshold" hash:"string"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold" hash:"string"`
	IsActive          bool            `json:"is_active"`
}

// Warning returns the warning threshold fraction, or the default when unset.
func (b Budget) Warning() decimal.Decimal {
	if b.WarningThreshold.IsZero() {
		return DefaultWarningThreshold
	}
	return b.WarningThreshold
}

// Critical returns the critical threshold fraction, or the default when unset.
func (b Budget) Critical() decimal.Decimal {
	if b.CriticalThreshold.IsZero() {
		return DefaultCriticalThreshold
	}
	return b.CriticalThreshold
}

// BudgetStatus classifies consumption against the allotment.
type BudgetStatus string

const (
	BudgetOK         BudgetStatus = "OK"
	BudgetWarning    BudgetStatus = "WARNING"
	BudgetOverBudget BudgetStatus = "OVER_BUDGET"
)

// BudgetConsumption holds how much of a budget the current month has used.
type BudgetConsumption struct {
	Budget            Budget          `json:"budget"`
	Spent             decimal.Decimal `json:"spent"`
	Remaining         decimal.Decimal `json:"remaining"`
	Percentage        decimal.Decimal `json:"percentage"`
	DisplayPercentage decimal.Decimal `json:"display_percentage"`
	Status            BudgetStatus    `json:"status"`
	Matched           int             `json:"matched"`
}

// AlertLevel is the threshold a budget has crossed.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// NotificationType mirrors the notification kinds of the finance API.
type NotificationType string

const (
	NotifyBudgetWarning  NotificationType = "BUDGET_WARNING"
	NotifyBudgetExceeded NotificationType = "BUDGET_EXCEEDED"
)

// BudgetAlert records one budget crossing a threshold in a given month.
// ThresholdPercentage is the consumption when the alert fired; Threshold is
// the configured limit that was crossed, both in percent.
type BudgetAlert struct {
	BudgetID            BudgetID         `json:"budget_id"`
	CategoryID          CategoryID       `json:"category_id"`
	Level               AlertLevel       `json:"level"`
	Type                NotificationType `json:"type"`
	ThresholdPercentage decimal.Decimal  `json:"threshold_percentage"`
	Threshold           decimal.Decimal  `json:"threshold"`
	Spent               decimal.Decimal  `json:"spent"`
	Amount              decimal.Decimal  `json:"amount"`
	Month               string           `json:"month"`
}

// Key identifies an alert for deduplication within a month.
func (a BudgetAlert) Key() string {
	return string(a.BudgetID) + "/" + string(a.Level) + "/" + a.Month
}
