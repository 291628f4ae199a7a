// Package model defines domain types for fburn snapshots and derived metrics.
package model

import "github.com/shopspring/decimal"

// Typed identifiers keep references between entities from being mixed up.
type (
	AccountID     string
	TransactionID string
	CategoryID    string
	BudgetID      string
	GoalID        string
)

// AccountType classifies an account.
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountBusiness   AccountType = "BUSINESS"
	AccountCash       AccountType = "CASH"
	AccountInvestment AccountType = "INVESTMENT"
	AccountLoan       AccountType = "LOAN"
	AccountOther      AccountType = "OTHER"
)

// OwnerScope separates personal money from professional money.
type OwnerScope string

const (
	ScopePersonal     OwnerScope = "PERSONAL"
	ScopeProfessional OwnerScope = "PROFESSIONAL"
)

// Account is a bank, cash or credit account. A negative balance is a liability.
type Account struct {
	ID         AccountID       `json:"id"`
	Name       string          `json:"name"`
	Type       AccountType     `json:"type"`
	OwnerScope OwnerScope      `json:"owner_scope,omitempty"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance" hash:"string"`
	BankName   string          `json:"bank_name,omitempty"`
	IsActive   bool            `json:"is_active"`
}

// ParseAccountType maps a wire value to an AccountType, falling back to AccountOther.
func ParseAccountType(s string) AccountType {
	switch t := AccountType(s); t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountBusiness,
		AccountCash, AccountInvestment, AccountLoan:
		return t
	default:
		return AccountOther
	}
}
