package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/components"
)

var testMonth = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSnapshot() model.Snapshot {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 9, 0, 0, 0, time.UTC) }
	return model.Snapshot{
		Accounts: []model.Account{
			{ID: "chk", Name: "Checking", Currency: "EUR", Balance: dec("2400"), IsActive: true},
		},
		Transactions: []model.Transaction{
			{ID: "t1", Amount: dec("3000"), Description: "Salary", Date: day(1), Status: model.StatusCompleted},
			{ID: "t2", Amount: dec("-950"), Description: "Rent", CategoryID: "rent", Date: day(2), Status: model.StatusCompleted},
			{ID: "t3", Amount: dec("-4.5"), Description: "Coffee", MerchantName: "Bean Bar", CategoryID: "food", Date: day(10), Status: model.StatusCompleted},
			{ID: "t4", Amount: dec("-60"), Description: "Groceries", CategoryID: "food", Date: day(12), Status: model.StatusPending},
		},
		Budgets: []model.Budget{
			{ID: "b-food", CategoryID: "food", Amount: dec("300"), IsActive: true},
			{ID: "b-rent", CategoryID: "rent", Amount: dec("900"), IsActive: true},
		},
		Goals: []model.Goal{
			{ID: "g1", Title: "Holiday", TargetAmount: dec("2000"), CurrentAmount: dec("800"),
				TargetDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Status: model.GoalActive},
		},
	}
}

func newLoadedApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	snap := testSnapshot()
	load := func(context.Context, config.Config, pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
		return &pipeline.LoadResult{Snapshot: snap, Source: pipeline.SourceFiles}, nil
	}
	a := NewApp(Options{Load: load, Month: testMonth})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 45})
	return update(t, a, DataLoadedMsg{Result: &pipeline.LoadResult{Snapshot: snap, Source: pipeline.SourceFiles}})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("click past the last tab = %d, want -1", got)
		}
	}
}

func TestDataLoadedComputesDashboard(t *testing.T) {
	a := newLoadedApp(t)

	if !a.dash.TotalBalance.Equal(dec("2400")) {
		t.Errorf("balance = %s", a.dash.TotalBalance)
	}
	if len(a.dash.Budgets) != 2 || len(a.dash.Goals) != 1 {
		t.Errorf("budgets/goals = %d/%d", len(a.dash.Budgets), len(a.dash.Goals))
	}
	// rent at 950/900 is over budget.
	if len(a.dash.Alerts) != 1 || a.dash.Alerts[0].CategoryID != "rent" {
		t.Errorf("alerts = %+v", a.dash.Alerts)
	}
	if len(a.daily) != 20 {
		t.Errorf("daily expenses len = %d, want 20", len(a.daily))
	}
	if a.txs[0].ID != "t4" {
		t.Errorf("transactions should be newest first, got %s", a.txs[0].ID)
	}
}

func TestTabShortcuts(t *testing.T) {
	a := newLoadedApp(t)
	for _, tt := range []struct {
		key  string
		want int
	}{
		{"b", tabBudgets},
		{"g", tabGoals},
		{"t", tabTransactions},
		{"x", tabSettings},
		{"o", tabOverview},
	} {
		a = update(t, a, keys(tt.key))
		if a.activeTab != tt.want {
			t.Errorf("key %q -> tab %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}

	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != tabSettings {
		t.Errorf("left from overview -> %d, want settings", a.activeTab)
	}
}

func TestBudgetCursorClamps(t *testing.T) {
	a := newLoadedApp(t)
	a = update(t, a, keys("b"))
	for i := 0; i < 5; i++ {
		a = update(t, a, keys("j"))
	}
	if a.budgets.cursor != 1 {
		t.Errorf("cursor = %d, want 1", a.budgets.cursor)
	}
	a = update(t, a, tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	if a.budgets.cursor != 0 {
		t.Errorf("cursor after wheel up = %d, want 0", a.budgets.cursor)
	}
}

func TestTransactionSearchAndFilter(t *testing.T) {
	a := newLoadedApp(t)
	a = update(t, a, keys("t"))

	a = update(t, a, keys("/"))
	if !a.txState.searching {
		t.Fatal("/ should start searching")
	}
	a = update(t, a, keys("bean"))
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.txState.query != "bean" {
		t.Fatalf("query = %q", a.txState.query)
	}
	if got := a.filteredTransactions(); len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("merchant search = %+v", got)
	}

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.txState.query != "" {
		t.Error("esc should clear the query")
	}

	a = update(t, a, keys("f")) // income
	if a.txState.filter() != model.FilterIncome || len(a.filteredTransactions()) != 1 {
		t.Errorf("income filter = %s, %d txs", a.txState.filter(), len(a.filteredTransactions()))
	}
	a = update(t, a, keys("f")) // expense
	a = update(t, a, keys("f")) // pending
	if got := a.filteredTransactions(); len(got) != 1 || got[0].ID != "t4" {
		t.Errorf("pending filter = %+v", got)
	}
}

func TestSettingsSaveThreshold(t *testing.T) {
	a := newLoadedApp(t)
	a = update(t, a, keys("x"))
	for i := 0; i < settingsFieldWarning; i++ {
		a = update(t, a, keys("j"))
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if !a.settings.editing {
		t.Fatal("enter should start editing")
	}
	a.settings.input.SetValue("0.75")

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if a.settings.saveErr != nil {
		t.Fatalf("save error: %v", a.settings.saveErr)
	}
	if a.cfg.Budget.DefaultWarningThreshold != 0.75 {
		t.Errorf("warning threshold = %v", a.cfg.Budget.DefaultWarningThreshold)
	}
	if cmd == nil || !a.refreshing {
		t.Error("threshold change should trigger a reload")
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "fburn", "config.toml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestSettingsRejectsInvalidThreshold(t *testing.T) {
	a := newLoadedApp(t)
	a = update(t, a, keys("x"))
	a.settings.cursor = settingsFieldWarning
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a.settings.input.SetValue("1.5")
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.settings.saveErr == nil {
		t.Fatal("warning threshold above 1 should be rejected")
	}
	if a.cfg.Budget.DefaultWarningThreshold != config.DefaultConfig().Budget.DefaultWarningThreshold {
		t.Error("rejected value must not be applied")
	}
}

func TestViewRendersEachTab(t *testing.T) {
	a := newLoadedApp(t)
	want := map[string]string{
		"o": "Total Balance",
		"b": "Budgets [2]",
		"g": "Holiday",
		"t": "Transactions [4]",
		"x": "Warning Threshold",
	}
	for key, text := range want {
		a = update(t, a, keys(key))
		if v := a.View(); !strings.Contains(v, text) {
			t.Errorf("tab %q view missing %q", key, text)
		}
	}
}

func TestLoadErrorView(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := NewApp(Options{Month: testMonth})
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a = update(t, a, DataLoadedMsg{Err: errors.New("no finance data found")})

	if !strings.Contains(a.View(), "Could not load finance data") {
		t.Error("load error should be shown")
	}
}

func TestRefreshKeepsDataOnError(t *testing.T) {
	a := newLoadedApp(t)
	a.refreshing = true
	a = update(t, a, RefreshDataMsg{Err: errors.New("api down")})

	if a.refreshing || a.refreshErr == nil {
		t.Errorf("refreshing=%v refreshErr=%v", a.refreshing, a.refreshErr)
	}
	if len(a.dash.Budgets) != 2 {
		t.Error("previous data should survive a failed refresh")
	}
}

func TestNarrowTerminal(t *testing.T) {
	a := newLoadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("narrow terminal message missing")
	}
}
