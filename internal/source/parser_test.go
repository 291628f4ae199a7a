package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/fburn/internal/model"
)

// writeExport creates a temp JSON file and returns a DiscoveredFile for it.
func writeExport(t *testing.T, kind Kind, body string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, string(kind)+".json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Kind: kind}
}

func TestParseFile_Accounts(t *testing.T) {
	df := writeExport(t, KindAccounts, `[
		{"id":"a1","name":"Main","type":"CHECKING","owner_scope":"PERSONAL","currency":"EUR","balance":1520.40,"bank_name":"Fineco","is_active":true},
		{"id":"a2","name":"Card","type":"CREDIT_CARD","currency":"EUR","balance":"-320.10","is_active":false},
		{"id":"a3","name":"Odd","type":"CRYPTO","balance":5}
	]`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Accounts) != 3 {
		t.Fatalf("Accounts = %d, want 3", len(result.Accounts))
	}

	a := result.Accounts[0]
	if a.ID != "a1" || a.Type != model.AccountChecking || a.OwnerScope != model.ScopePersonal || a.BankName != "Fineco" {
		t.Errorf("account[0] = %+v", a)
	}
	if a.Balance.String() != "1520.4" {
		t.Errorf("Balance = %s, want 1520.4", a.Balance)
	}
	if result.Accounts[1].IsActive {
		t.Error("account[1] IsActive = true, want false")
	}
	if result.Accounts[1].Balance.String() != "-320.1" {
		t.Errorf("string balance = %s, want -320.1", result.Accounts[1].Balance)
	}
	odd := result.Accounts[2]
	if odd.Type != model.AccountOther || !odd.IsActive || odd.Currency != "EUR" {
		t.Errorf("defaults not applied: %+v", odd)
	}
}

func TestParseFile_TransactionsSkipsBadRecords(t *testing.T) {
	df := writeExport(t, KindTransactions, `[
		{"id":"t1","account_id":"a1","amount":-4.5,"date":"2026-05-03T08:15:00Z","description":"Coffee Shop","category_id":"food","merchant_name":"Bar Centrale","status":"COMPLETED","tags":["coffee"]},
		{"id":"t2","account_id":"a1","amount":2800,"date":"2026-05-01","description":"Salary","status":"PENDING","is_recurring":true},
		{"id":"t3","account_id":"a1","amount":-10,"date":"yesterday","description":"Bad date"},
		{"id":"t4","amount":"not-a-number","date":"2026-05-01"},
		"garbage"
	]`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Transactions = %d, want 2", len(result.Transactions))
	}
	if result.ParseErrors != 3 {
		t.Errorf("ParseErrors = %d, want 3", result.ParseErrors)
	}

	t1 := result.Transactions[0]
	if t1.CategoryID != "food" || t1.MerchantName != "Bar Centrale" || len(t1.Tags) != 1 {
		t.Errorf("t1 = %+v", t1)
	}
	if !t1.Date.Equal(time.Date(2026, 5, 3, 8, 15, 0, 0, time.UTC)) {
		t.Errorf("t1 date = %s", t1.Date)
	}

	t2 := result.Transactions[1]
	if t2.Status != model.StatusPending || !t2.IsRecurring {
		t.Errorf("t2 = %+v", t2)
	}
	y, m, d := t2.Date.Date()
	if y != 2026 || m != time.May || d != 1 || t2.Date.Location() != time.Local {
		t.Errorf("date-only value = %s, want local 2026-05-01", t2.Date)
	}
}

func TestParseFile_BudgetsAndGoals(t *testing.T) {
	bdf := writeExport(t, KindBudgets, `[
		{"id":"b1","category_id":"food","amount":300,"period_start":"2026-05-01","period_end":"2026-05-31","warning_threshold":0.75,"critical_threshold":1.0,"is_active":true},
		{"id":"b2","category_id":"fun","amount":50,"period_start":"2026-05-01","period_end":"2026-05-31"}
	]`)
	bres := ParseFile(bdf)
	if bres.Err != nil || len(bres.Budgets) != 2 {
		t.Fatalf("budgets: err=%v n=%d", bres.Err, len(bres.Budgets))
	}
	if bres.Budgets[0].Warning().String() != "0.75" {
		t.Errorf("Warning = %s, want 0.75", bres.Budgets[0].Warning())
	}
	if bres.Budgets[1].Warning().String() != "0.8" || bres.Budgets[1].Critical().String() != "1" {
		t.Errorf("default thresholds = %s/%s", bres.Budgets[1].Warning(), bres.Budgets[1].Critical())
	}

	gdf := writeExport(t, KindGoals, `[
		{"id":"g1","title":"Trip","target_amount":2000,"current_amount":500,"target_date":"2026-11-01","priority":2,"status":"ACTIVE",
		 "plan":{"monthly_saving_target":250,"months_remaining":6,"remaining_amount":1500,"strategy":"steady"}},
		{"id":"g2","title":"Fund","target_amount":5000,"current_amount":5000,"target_date":"2026-12-01","status":"COMPLETED"}
	]`)
	gres := ParseFile(gdf)
	if gres.Err != nil || len(gres.Goals) != 2 {
		t.Fatalf("goals: err=%v n=%d", gres.Err, len(gres.Goals))
	}
	g1 := gres.Goals[0]
	if g1.Plan == nil || g1.Plan.MonthlySavingTarget.String() != "250" || g1.Plan.Strategy != "steady" {
		t.Errorf("plan = %+v", g1.Plan)
	}
	if gres.Goals[1].Priority != 1 || gres.Goals[1].Status != model.GoalCompleted {
		t.Errorf("g2 = %+v", gres.Goals[1])
	}
	if gres.Records() != 2 {
		t.Errorf("Records = %d, want 2", gres.Records())
	}
}

func TestParse_NotArray(t *testing.T) {
	res := Parse(strings.NewReader(`{"data":[]}`), KindAccounts)
	if !errors.Is(res.Err, ErrNotArray) {
		t.Errorf("Err = %v, want ErrNotArray", res.Err)
	}
	res = Parse(strings.NewReader(``), KindAccounts)
	if !errors.Is(res.Err, ErrNotArray) {
		t.Errorf("empty input Err = %v, want ErrNotArray", res.Err)
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.json"), Kind: KindGoals})
	if res.Err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2026-05-03T08:15:00Z", true, time.Date(2026, 5, 3, 8, 15, 0, 0, time.UTC)},
		{"2026-05-03T08:15:00+02:00", true, time.Date(2026, 5, 3, 6, 15, 0, 0, time.UTC)},
		{"2026-05-03T08:15:00.123456", true, time.Date(2026, 5, 3, 8, 15, 0, 123456000, time.Local)},
		{"2026-05-03", true, time.Date(2026, 5, 3, 0, 0, 0, 0, time.Local)},
		{"", false, time.Time{}},
		{"03/05/2026", false, time.Time{}},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTime(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDateKeepsCivilDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-04-30T00:00:00Z", time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local)},
		{"2026-04-30T23:30:00-08:00", time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local)},
		{"2026-04-30T18:00:00", time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local)},
		{"2026-04-30", time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) || got.Location() != time.Local {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDate("soon"); err == nil {
		t.Error("ParseDate should reject unknown formats")
	}
}
