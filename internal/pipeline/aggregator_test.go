package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func tx(id, amount string, date time.Time) model.Transaction {
	return model.Transaction{
		ID:     model.TransactionID(id),
		Amount: dec(amount),
		Date:   date,
		Status: model.StatusCompleted,
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestTotalBalanceExcludesInactive(t *testing.T) {
	accounts := []model.Account{
		{ID: "a", Balance: dec("100"), IsActive: true},
		{ID: "b", Balance: dec("-30"), IsActive: true},
		{ID: "c", Balance: dec("500"), IsActive: false},
	}
	assertDec(t, "TotalBalance", TotalBalance(accounts), "70")
}

func TestTotalBalanceEmpty(t *testing.T) {
	assertDec(t, "TotalBalance(nil)", TotalBalance(nil), "0")
}

func TestActiveCurrencies(t *testing.T) {
	accounts := []model.Account{
		{Currency: "USD", IsActive: true},
		{Currency: "EUR", IsActive: true},
		{Currency: "EUR", IsActive: true},
		{Currency: "GBP", IsActive: false},
	}
	got := ActiveCurrencies(accounts)
	if len(got) != 2 || got[0] != "EUR" || got[1] != "USD" {
		t.Errorf("ActiveCurrencies = %v, want [EUR USD]", got)
	}
}

func TestPeriodTransactions(t *testing.T) {
	ref := day(2026, 5, 15)
	txs := []model.Transaction{
		tx("1", "-10", day(2026, 5, 1)),
		tx("2", "-10", day(2026, 4, 30)),
		tx("3", "-10", day(2025, 5, 15)),
		tx("4", "25", day(2026, 5, 31)),
	}
	got := PeriodTransactions(txs, ref)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("ids = %s,%s, want 1,4", got[0].ID, got[1].ID)
	}
}

func TestIncomeExpensesSavings(t *testing.T) {
	txs := []model.Transaction{
		tx("1", "2500", day(2026, 5, 1)),
		tx("2", "-800.50", day(2026, 5, 2)),
		tx("3", "-1999.50", day(2026, 5, 3)),
		tx("4", "100", day(2026, 5, 4)),
	}
	assertDec(t, "Income", Income(txs), "2600")
	assertDec(t, "Expenses", Expenses(txs), "2800")
	assertDec(t, "Savings", Savings(txs), "-200")

	totals := Totals(txs)
	assertDec(t, "Totals.Income", totals.Income, "2600")
	assertDec(t, "Totals.Expenses", totals.Expenses, "2800")
	assertDec(t, "Totals.Savings", totals.Savings, "-200")
	if totals.Count != 4 {
		t.Errorf("Totals.Count = %d, want 4", totals.Count)
	}
}

func TestTotalsEmpty(t *testing.T) {
	totals := Totals(nil)
	assertDec(t, "Income", totals.Income, "0")
	assertDec(t, "Expenses", totals.Expenses, "0")
	assertDec(t, "Savings", totals.Savings, "0")
}

func TestFilterTransactionsSearch(t *testing.T) {
	txs := []model.Transaction{
		{ID: "1", Description: "Coffee Shop", Amount: dec("-4")},
		{ID: "2", Description: "Rent", Amount: dec("-900")},
	}
	got := FilterTransactions(txs, "shop", model.FilterAll)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("FilterTransactions(shop) = %+v, want only Coffee Shop", got)
	}
	if all := FilterTransactions(txs, "", model.FilterAll); len(all) != 2 {
		t.Errorf("empty query matched %d, want 2", len(all))
	}
}

func TestFilterTransactionsMerchant(t *testing.T) {
	txs := []model.Transaction{
		{ID: "1", Description: "Card payment", MerchantName: "ACME Market", Amount: dec("-30")},
		{ID: "2", Description: "Card payment", MerchantName: "Bakery", Amount: dec("-3")},
	}
	got := FilterTransactions(txs, "acme", model.FilterAll)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("merchant search = %+v, want id 1", got)
	}
}

func TestFilterTransactionsType(t *testing.T) {
	txs := []model.Transaction{
		{ID: "in", Amount: dec("10"), Status: model.StatusCompleted},
		{ID: "out", Amount: dec("-10"), Status: model.StatusCompleted},
		{ID: "pend", Amount: dec("-5"), Status: model.StatusPending},
	}
	tests := []struct {
		filter model.TypeFilter
		want   []model.TransactionID
	}{
		{model.FilterAll, []model.TransactionID{"in", "out", "pend"}},
		{model.FilterIncome, []model.TransactionID{"in"}},
		{model.FilterExpense, []model.TransactionID{"out", "pend"}},
		{model.FilterPending, []model.TransactionID{"pend"}},
	}
	for _, tt := range tests {
		got := FilterTransactions(txs, "", tt.filter)
		if len(got) != len(tt.want) {
			t.Errorf("%s: len = %d, want %d", tt.filter, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("%s[%d] = %s, want %s", tt.filter, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestFilterTransactionsDoesNotMutate(t *testing.T) {
	txs := []model.Transaction{
		{ID: "1", Description: "Rent", Amount: dec("-900")},
		{ID: "2", Description: "Salary", Amount: dec("3000")},
	}
	got := FilterTransactions(txs, "salary", model.FilterIncome)
	got[0].Description = "changed"
	if txs[1].Description != "Salary" || txs[0].ID != "1" || len(txs) != 2 {
		t.Error("FilterTransactions modified its input")
	}
}

func TestSpendingByCategory(t *testing.T) {
	txs := []model.Transaction{
		{CategoryID: "food", Amount: dec("-20")},
		{CategoryID: "rent", Amount: dec("-900")},
		{CategoryID: "food", Amount: dec("-35.5")},
		{CategoryID: "fun", Amount: dec("-55.5")},
		{CategoryID: "food", Amount: dec("100")},
		{Amount: dec("-5")},
	}
	got := SpendingByCategory(txs)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// food and fun tie at 55.5; the category id breaks the tie.
	wantOrder := []model.CategoryID{"rent", "food", "fun"}
	for i, cat := range wantOrder {
		if got[i].CategoryID != cat {
			t.Errorf("[%d] = %s, want %s", i, got[i].CategoryID, cat)
		}
	}
	assertDec(t, "food spent", got[1].Spent, "55.5")
	if got[1].Count != 2 {
		t.Errorf("food count = %d, want 2", got[1].Count)
	}
}

func TestEstimateInsights(t *testing.T) {
	txs := []model.Transaction{
		{Amount: dec("3000"), Status: model.StatusCompleted},
		{Amount: dec("200"), Status: model.StatusPending},
		{Amount: dec("-900"), Status: model.StatusCompleted, IsRecurring: true},
		{Amount: dec("-50"), Status: model.StatusCompleted, IsRecurring: true},
		{Amount: dec("-70"), Status: model.StatusCompleted},
		{Amount: dec("-15"), Status: model.StatusCancelled, IsRecurring: true},
	}
	est := EstimateInsights(txs)
	assertDec(t, "IncomeEstimate", est.IncomeEstimate, "3000")
	assertDec(t, "FixedCostsEstimate", est.FixedCostsEstimate, "950")
	if !est.Sufficient {
		t.Error("Sufficient = false, want true for 6 transactions")
	}

	if EstimateInsights(txs[:4]).Sufficient {
		t.Error("Sufficient = true, want false for 4 transactions")
	}
}

func TestDailyExpenses(t *testing.T) {
	txs := []model.Transaction{
		tx("a", "-10", day(2026, 5, 1)),
		tx("b", "-5.5", day(2026, 5, 1)),
		tx("c", "200", day(2026, 5, 2)),
		tx("d", "-30", day(2026, 5, 3)),
		tx("e", "-99", day(2026, 5, 25)),
		tx("f", "-1", day(2026, 4, 30)),
	}
	got := DailyExpenses(txs, day(2026, 5, 3))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	assertDec(t, "day 1", got[0], "15.5")
	assertDec(t, "day 2", got[1], "0")
	assertDec(t, "day 3", got[2], "30")
}
