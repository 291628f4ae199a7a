package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is a single signed movement on an account.
// Negative amounts are expenses, positive amounts are income.
type Transaction struct {
	ID           TransactionID     `json:"id"`
	AccountID    AccountID         `json:"account_id"`
	Amount       decimal.Decimal   `json:"amount" hash:"string"`
	Currency     string            `json:"currency"`
	Date         time.Time         `json:"date" hash:"string"`
	Description  string            `json:"description"`
	CategoryID   CategoryID        `json:"category_id,omitempty"`
	MerchantName string            `json:"merchant_name,omitempty"`
	Status       TransactionStatus `json:"status"`
	IsRecurring  bool              `json:"is_recurring"`
	IsManual     bool              `json:"is_manual"`
	Notes        string            `json:"notes,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
}

// IsIncome reports whether the transaction adds money.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports whether the transaction removes money.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// ParseTransactionStatus maps a wire value to a status. Unknown values are
// treated as completed, which is what the API assigns on creation.
func ParseTransactionStatus(s string) TransactionStatus {
	switch st := TransactionStatus(s); st {
	case StatusPending, StatusCancelled:
		return st
	default:
		return StatusCompleted
	}
}

// TypeFilter selects one class of transactions in list views.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
	FilterPending TypeFilter = "pending"
)

// TypeFilters lists the filters in display order.
var TypeFilters = []TypeFilter{FilterAll, FilterIncome, FilterExpense, FilterPending}

// ParseTypeFilter validates a filter name.
func ParseTypeFilter(s string) (TypeFilter, bool) {
	for _, f := range TypeFilters {
		if string(f) == s {
			return f, true
		}
	}
	return FilterAll, false
}
