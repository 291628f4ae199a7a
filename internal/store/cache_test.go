package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

func openTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "fburn.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

func testSnapshot() model.Snapshot {
	d := decimal.RequireFromString
	return model.Snapshot{
		Accounts: []model.Account{
			{ID: "a1", Name: "Main", Type: model.AccountChecking, OwnerScope: model.ScopePersonal, Currency: "EUR", Balance: d("1520.40"), BankName: "Fineco", IsActive: true},
			{ID: "a2", Name: "Card", Type: model.AccountCreditCard, Currency: "EUR", Balance: d("-320.10")},
		},
		Transactions: []model.Transaction{
			{ID: "t1", AccountID: "a1", Amount: d("-4.50"), Currency: "EUR", Date: time.Date(2026, 5, 3, 8, 15, 0, 0, time.UTC),
				Description: "Coffee Shop", CategoryID: "food", MerchantName: "Bar", Status: model.StatusCompleted, Tags: []string{"coffee", "morning"}},
			{ID: "t2", AccountID: "a1", Amount: d("2800"), Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				Description: "Salary", Status: model.StatusPending, IsRecurring: true, IsManual: true, Notes: "May"},
		},
		Budgets: []model.Budget{
			{ID: "b1", CategoryID: "food", Amount: d("300"), PeriodStart: time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
				PeriodEnd: time.Date(2026, 5, 31, 0, 0, 0, 0, time.Local), WarningThreshold: d("0.75"), IsActive: true},
		},
		Goals: []model.Goal{
			{ID: "g1", Title: "Trip", TargetAmount: d("2000"), CurrentAmount: d("500"), TargetDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.Local),
				Priority: 2, Status: model.GoalActive, LinkedAccountID: "a1",
				Plan: &model.GoalPlan{MonthlySavingTarget: d("250"), MonthsRemaining: 6, RemainingAmount: d("1500"), Strategy: "steady"}},
			{ID: "g2", Title: "Fund", TargetAmount: d("5000"), CurrentAmount: d("5000"), TargetDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.Local),
				Priority: 1, Status: model.GoalCompleted},
		},
		FetchedAt: time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC),
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	c, _ := openTestCache(t)
	if _, _, err := c.LoadSnapshot(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, _ := openTestCache(t)
	snap := testSnapshot()

	if err := c.SaveSnapshot(snap, "files", nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, meta, err := c.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if meta.Source != "files" || !meta.FetchedAt.Equal(snap.FetchedAt) {
		t.Errorf("meta = %+v", meta)
	}
	if len(got.Accounts) != 2 || len(got.Transactions) != 2 || len(got.Budgets) != 1 || len(got.Goals) != 2 {
		t.Fatalf("counts = %d/%d/%d/%d", len(got.Accounts), len(got.Transactions), len(got.Budgets), len(got.Goals))
	}

	want, _ := snap.Fingerprint()
	have, err := got.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if have != want || meta.Fingerprint != want {
		t.Errorf("fingerprint = %x (meta %x), want %x", have, meta.Fingerprint, want)
	}

	t1 := got.Transactions[0]
	if len(t1.Tags) != 2 || t1.Tags[1] != "morning" || t1.MerchantName != "Bar" {
		t.Errorf("t1 = %+v", t1)
	}
	if got.Transactions[1].Tags != nil {
		t.Errorf("t2 tags = %v, want nil", got.Transactions[1].Tags)
	}
	g1 := got.Goals[0]
	if g1.Plan == nil || g1.Plan.MonthsRemaining != 6 || g1.Plan.Strategy != "steady" {
		t.Errorf("g1 plan = %+v", g1.Plan)
	}
	if got.Goals[1].Plan != nil {
		t.Error("g2 plan should be nil")
	}
	if !got.Budgets[0].CriticalThreshold.IsZero() {
		t.Errorf("unset critical threshold = %s, want 0", got.Budgets[0].CriticalThreshold)
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	c, _ := openTestCache(t)
	if err := c.SaveSnapshot(testSnapshot(), "api", nil); err != nil {
		t.Fatal(err)
	}

	smaller := testSnapshot()
	smaller.Transactions = smaller.Transactions[:1]
	smaller.Goals = nil
	if err := c.SaveSnapshot(smaller, "api", nil); err != nil {
		t.Fatal(err)
	}

	got, _, err := c.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Transactions) != 1 || len(got.Goals) != 0 {
		t.Errorf("transactions=%d goals=%d, want 1 and 0", len(got.Transactions), len(got.Goals))
	}
}

func TestTrackedFiles(t *testing.T) {
	c, _ := openTestCache(t)
	tracked := map[string]FileInfo{
		"/data/accounts.json":     {MtimeNs: 100, SizeBytes: 20},
		"/data/transactions.json": {MtimeNs: 200, SizeBytes: 4096},
	}
	if err := c.SaveSnapshot(testSnapshot(), "files", tracked); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["/data/transactions.json"].SizeBytes != 4096 {
		t.Errorf("tracked = %+v", got)
	}

	// An API snapshot has no backing files.
	if err := c.SaveSnapshot(testSnapshot(), "api", nil); err != nil {
		t.Fatal(err)
	}
	if got, _ = c.GetTrackedFiles(); len(got) != 0 {
		t.Errorf("tracked after api save = %d, want 0", len(got))
	}
}

func TestOpenTwice(t *testing.T) {
	c, path := openTestCache(t)
	if err := c.SaveSnapshot(testSnapshot(), "files", nil); err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = again.Close() }()
	if _, err := again.LoadMeta(); err != nil {
		t.Errorf("LoadMeta after reopen: %v", err)
	}
}
