package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

// writeBenchExport writes n transactions spread over months into dir.
func writeBenchExport(b *testing.B, dir string, n int) {
	b.Helper()
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"id":"t%d","account_id":"a1","amount":-%d.%02d,"date":"2026-%02d-%02dT10:00:00Z","description":"Purchase %d","category_id":"c%d","status":"COMPLETED"}`,
			i, i%500, i%100, 1+i%12, 1+i%28, i, i%20)
	}
	sb.WriteString("]")
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(sb.String()), 0o600); err != nil {
		b.Fatal(err)
	}
}

func benchSnapshot(n int) model.Snapshot {
	snap := model.Snapshot{}
	for i := 0; i < n; i++ {
		snap.Transactions = append(snap.Transactions, model.Transaction{
			ID:         model.TransactionID(fmt.Sprintf("t%d", i)),
			Amount:     decimal.NewFromInt(int64(-(i % 500))),
			Date:       time.Date(2026, time.Month(1+i%12), 1+i%28, 10, 0, 0, 0, time.UTC),
			CategoryID: model.CategoryID(fmt.Sprintf("c%d", i%20)),
			Status:     model.StatusCompleted,
		})
	}
	for i := 0; i < 20; i++ {
		snap.Budgets = append(snap.Budgets, model.Budget{
			ID:         model.BudgetID(fmt.Sprintf("b%d", i)),
			CategoryID: model.CategoryID(fmt.Sprintf("c%d", i)),
			Amount:     decimal.NewFromInt(2000),
			IsActive:   true,
		})
	}
	return snap
}

func BenchmarkLoadFiles(b *testing.B) {
	dir := b.TempDir()
	writeBenchExport(b, dir, 20000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := LoadFiles(dir, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkBuildDashboard(b *testing.B) {
	snap := benchSnapshot(20000)
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildDashboard(snap, now)
	}
}

func BenchmarkMemoDashboard(b *testing.B) {
	snap := benchSnapshot(20000)
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	memo := NewMemo(time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = memo.Dashboard(snap, now)
	}
}
