package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalPaused    GoalStatus = "PAUSED"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalCancelled GoalStatus = "CANCELLED"
)

// ParseGoalStatus maps a wire value to a status, defaulting to active.
func ParseGoalStatus(s string) GoalStatus {
	switch st := GoalStatus(s); st {
	case GoalPaused, GoalCompleted, GoalCancelled:
		return st
	default:
		return GoalActive
	}
}

// GoalPlan is a saving plan generated upstream for a goal.
type GoalPlan struct {
	MonthlySavingTarget decimal.Decimal `json:"monthly_saving_target" hash:"string"`
	MonthsRemaining     int             `json:"months_remaining"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount" hash:"string"`
	Strategy            string          `json:"strategy,omitempty"`
}

// Goal is a savings target. CurrentAmount may overshoot TargetAmount.
type Goal struct {
	ID              GoalID          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	TargetAmount    decimal.Decimal `json:"target_amount" hash:"string"`
	CurrentAmount   decimal.Decimal `json:"current_amount" hash:"string"`
	TargetDate      time.Time       `json:"target_date" hash:"string"`
	Priority        int             `json:"priority"`
	Status          GoalStatus      `json:"status"`
	LinkedAccountID AccountID       `json:"linked_account_id,omitempty"`
	Plan            *GoalPlan       `json:"plan,omitempty"`
}

// IsFunded reports whether the saved amount reached the target.
func (g Goal) IsFunded() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// ProgressTone is the styling band for a goal progress bar.
type ProgressTone string

const (
	ToneSuccess ProgressTone = "success"
	ToneNeutral ProgressTone = "neutral"
	ToneLow     ProgressTone = "low"
	ToneMedium  ProgressTone = "medium"
	ToneHigh    ProgressTone = "high"
	ToneNearly  ProgressTone = "nearly"
)

// GoalProgress holds the derived progress figures for one goal.
type GoalProgress struct {
	Goal                     Goal             `json:"goal"`
	Percentage               decimal.Decimal  `json:"percentage"`
	RawRemaining             decimal.Decimal  `json:"raw_remaining"`
	Remaining                decimal.Decimal  `json:"remaining"`
	DaysRemaining            int              `json:"days_remaining"`
	RecommendedMonthlySaving *decimal.Decimal `json:"recommended_monthly_saving"`
	Tone                     ProgressTone     `json:"tone"`
}
