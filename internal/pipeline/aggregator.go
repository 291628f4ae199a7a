// Package pipeline orchestrates snapshot loading, caching, and metric aggregation.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/model"
)

// minInsightTransactions is the smallest sample EstimateInsights trusts.
const minInsightTransactions = 5

var hundred = decimal.NewFromInt(100)

// TotalBalance sums the balances of active accounts. Inactive accounts are
// excluded entirely. No currency conversion is performed.
func TotalBalance(accounts []model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a.IsActive {
			total = total.Add(a.Balance)
		}
	}
	return total
}

// ActiveCurrencies returns the sorted distinct currencies of active accounts.
func ActiveCurrencies(accounts []model.Account) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range accounts {
		if !a.IsActive || a.Currency == "" {
			continue
		}
		if _, ok := seen[a.Currency]; ok {
			continue
		}
		seen[a.Currency] = struct{}{}
		out = append(out, a.Currency)
	}
	sort.Strings(out)
	return out
}

// PeriodTransactions returns the transactions dated in the same calendar
// month and year as ref.
func PeriodTransactions(txs []model.Transaction, ref time.Time) []model.Transaction {
	var out []model.Transaction
	for _, t := range txs {
		if calendar.SameMonth(t.Date, ref) {
			out = append(out, t)
		}
	}
	return out
}

// Income sums positive amounts.
func Income(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsIncome() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Expenses sums the absolute value of negative amounts.
func Expenses(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsExpense() {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// Savings is income minus expenses. It may be negative.
func Savings(txs []model.Transaction) decimal.Decimal {
	return Income(txs).Sub(Expenses(txs))
}

// Totals computes income, expenses and savings in one pass.
func Totals(txs []model.Transaction) model.PeriodTotals {
	p := model.PeriodTotals{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Count:    len(txs),
	}
	for _, t := range txs {
		switch {
		case t.IsIncome():
			p.Income = p.Income.Add(t.Amount)
		case t.IsExpense():
			p.Expenses = p.Expenses.Add(t.Amount.Abs())
		}
	}
	p.Savings = p.Income.Sub(p.Expenses)
	return p
}

// FilterTransactions returns the transactions matching query and filter.
// The query is a case-insensitive substring match on the description or the
// merchant name; an empty query matches everything. The input is not modified.
func FilterTransactions(txs []model.Transaction, query string, filter model.TypeFilter) []model.Transaction {
	query = strings.TrimSpace(query)
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if !matchesType(t, filter) {
			continue
		}
		if query != "" && !containsIgnoreCase(t.Description, query) &&
			!containsIgnoreCase(t.MerchantName, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesType(t model.Transaction, filter model.TypeFilter) bool {
	switch filter {
	case model.FilterIncome:
		return t.IsIncome()
	case model.FilterExpense:
		return t.IsExpense()
	case model.FilterPending:
		return t.Status == model.StatusPending
	default:
		return true
	}
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SpendingByCategory groups categorized expenses by category, sorted by
// spend descending. Uncategorized expenses are left out.
func SpendingByCategory(txs []model.Transaction) []model.CategorySpend {
	byCat := make(map[model.CategoryID]*model.CategorySpend)
	for _, t := range txs {
		if !t.IsExpense() || t.CategoryID == "" {
			continue
		}
		cs, ok := byCat[t.CategoryID]
		if !ok {
			cs = &model.CategorySpend{CategoryID: t.CategoryID, Spent: decimal.Zero}
			byCat[t.CategoryID] = cs
		}
		cs.Spent = cs.Spent.Add(t.Amount.Abs())
		cs.Count++
	}

	out := make([]model.CategorySpend, 0, len(byCat))
	for _, cs := range byCat {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spent.Cmp(out[j].Spent); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// EstimateInsights computes the income and fixed-cost estimates used for
// insight generation. Only completed transactions count.
func EstimateInsights(txs []model.Transaction) model.InsightEstimates {
	est := model.InsightEstimates{
		IncomeEstimate:     decimal.Zero,
		FixedCostsEstimate: decimal.Zero,
		Transactions:       len(txs),
		Sufficient:         len(txs) >= minInsightTransactions,
	}
	for _, t := range txs {
		if t.Status != model.StatusCompleted {
			continue
		}
		if t.IsIncome() {
			est.IncomeEstimate = est.IncomeEstimate.Add(t.Amount)
		}
		if t.IsExpense() && t.IsRecurring {
			est.FixedCostsEstimate = est.FixedCostsEstimate.Add(t.Amount.Abs())
		}
	}
	return est
}

// DailyExpenses returns the expense total for each day of ref's month, from
// the 1st through ref's day. Days are taken in ref's location.
func DailyExpenses(txs []model.Transaction, ref time.Time) []decimal.Decimal {
	out := make([]decimal.Decimal, ref.Day())
	for i := range out {
		out[i] = decimal.Zero
	}
	for _, t := range txs {
		if !t.IsExpense() || !calendar.SameMonth(t.Date, ref) {
			continue
		}
		d := t.Date.In(ref.Location()).Day()
		if d > len(out) {
			continue
		}
		out[d-1] = out[d-1].Add(t.Amount.Abs())
	}
	return out
}
