package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

// Kind is the entity collection a file holds.
type Kind string

const (
	KindAccounts     Kind = "accounts"
	KindTransactions Kind = "transactions"
	KindBudgets      Kind = "budgets"
	KindGoals        Kind = "goals"
)

// Kinds lists every collection in load order.
var Kinds = []Kind{KindAccounts, KindTransactions, KindBudgets, KindGoals}

// DiscoveredFile represents a JSON export file found during directory scanning.
type DiscoveredFile struct {
	Path string
	Kind Kind
}

// RawAccount is an account record as exported by the finance API.
type RawAccount struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	OwnerScope string          `json:"owner_scope"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	BankName   *string         `json:"bank_name"`
	IsActive   *bool           `json:"is_active"`
}

// RawTransaction is a transaction record as exported by the finance API.
type RawTransaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	CategoryID   *string         `json:"category_id"`
	MerchantName *string         `json:"merchant_name"`
	IsManual     bool            `json:"is_manual"`
	IsRecurring  bool            `json:"is_recurring"`
	Status       string          `json:"status"`
	Notes        *string         `json:"notes"`
	Tags         []string        `json:"tags"`
}

// RawBudget is a budget record as exported by the finance API.
type RawBudget struct {
	ID                string          `json:"id"`
	CategoryID        string          `json:"category_id"`
	Amount            decimal.Decimal `json:"amount"`
	PeriodStart       string          `json:"period_start"`
	PeriodEnd         string          `json:"period_end"`
	WarningThreshold  decimal.Decimal `json:"warning_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
	IsActive          *bool           `json:"is_active"`
}

// RawGoalPlan is the generated plan attached to a goal.
type RawGoalPlan struct {
	MonthlySavingTarget decimal.Decimal `json:"monthly_saving_target"`
	MonthsRemaining     int             `json:"months_remaining"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount"`
	Strategy            string          `json:"strategy"`
}

// RawGoal is a goal record as exported by the finance API.
type RawGoal struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	TargetDate      string          `json:"target_date"`
	Priority        int             `json:"priority"`
	Status          string          `json:"status"`
	LinkedAccountID *string         `json:"linked_account_id"`
	Plan            *RawGoalPlan    `json:"plan"`
}

// Model converts the record to a domain account.
func (r RawAccount) Model() (model.Account, error) {
	if r.ID == "" {
		return model.Account{}, fmt.Errorf("account without id")
	}
	currency := r.Currency
	if currency == "" {
		currency = "EUR"
	}
	return model.Account{
		ID:         model.AccountID(r.ID),
		Name:       r.Name,
		Type:       model.ParseAccountType(r.Type),
		OwnerScope: model.OwnerScope(strings.ToUpper(r.OwnerScope)),
		Currency:   currency,
		Balance:    r.Balance,
		BankName:   deref(r.BankName),
		IsActive:   r.IsActive == nil || *r.IsActive,
	}, nil
}

// Model converts the record to a domain transaction.
func (r RawTransaction) Model() (model.Transaction, error) {
	if r.ID == "" {
		return model.Transaction{}, fmt.Errorf("transaction without id")
	}
	date, err := ParseTime(r.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	return model.Transaction{
		ID:           model.TransactionID(r.ID),
		AccountID:    model.AccountID(r.AccountID),
		Amount:       r.Amount,
		Currency:     r.Currency,
		Date:         date,
		Description:  r.Description,
		CategoryID:   model.CategoryID(deref(r.CategoryID)),
		MerchantName: deref(r.MerchantName),
		Status:       model.ParseTransactionStatus(r.Status),
		IsRecurring:  r.IsRecurring,
		IsManual:     r.IsManual,
		Notes:        deref(r.Notes),
		Tags:         r.Tags,
	}, nil
}

// Model converts the record to a domain budget.
func (r RawBudget) Model() (model.Budget, error) {
	if r.ID == "" {
		return model.Budget{}, fmt.Errorf("budget without id")
	}
	b := model.Budget{
		ID:                model.BudgetID(r.ID),
		CategoryID:        model.CategoryID(r.CategoryID),
		Amount:            r.Amount,
		WarningThreshold:  r.WarningThreshold,
		CriticalThreshold: r.CriticalThreshold,
		IsActive:          r.IsActive == nil || *r.IsActive,
	}
	var err error
	if r.PeriodStart != "" {
		if b.PeriodStart, err = ParseDate(r.PeriodStart); err != nil {
			return model.Budget{}, fmt.Errorf("budget %s period_start: %w", r.ID, err)
		}
	}
	if r.PeriodEnd != "" {
		if b.PeriodEnd, err = ParseDate(r.PeriodEnd); err != nil {
			return model.Budget{}, fmt.Errorf("budget %s period_end: %w", r.ID, err)
		}
	}
	return b, nil
}

// Model converts the record to a domain goal.
func (r RawGoal) Model() (model.Goal, error) {
	if r.ID == "" {
		return model.Goal{}, fmt.Errorf("goal without id")
	}
	target, err := ParseDate(r.TargetDate)
	if err != nil {
		return model.Goal{}, fmt.Errorf("goal %s target_date: %w", r.ID, err)
	}
	priority := r.Priority
	if priority == 0 {
		priority = 1
	}
	g := model.Goal{
		ID:              model.GoalID(r.ID),
		Title:           r.Title,
		Description:     deref(r.Description),
		TargetAmount:    r.TargetAmount,
		CurrentAmount:   r.CurrentAmount,
		TargetDate:      target,
		Priority:        priority,
		Status:          model.ParseGoalStatus(r.Status),
		LinkedAccountID: model.AccountID(deref(r.LinkedAccountID)),
	}
	if r.Plan != nil {
		g.Plan = &model.GoalPlan{
			MonthlySavingTarget: r.Plan.MonthlySavingTarget,
			MonthsRemaining:     r.Plan.MonthsRemaining,
			RemainingAmount:     r.Plan.RemainingAmount,
			Strategy:            r.Plan.Strategy,
		}
	}
	return g, nil
}

// Date-only values are read as local midnight so day arithmetic lines up
// with the local clock.
var timeLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", true},
}

// ParseTime parses the date and timestamp formats the finance API emits.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, l := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, time.Local)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDate parses a calendar-date field and returns local midnight of the
// civil date as written, whatever zone or time of day it carries. The SQLite
// cache stores these fields the same way, so both load paths agree.
func ParseDate(s string) (time.Time, error) {
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
