package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/fburn/internal/apiclient"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/store"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func exportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "accounts.json", `[{"id":"a1","name":"Main","type":"CHECKING","currency":"EUR","balance":100,"is_active":true}]`)
	writeFile(t, dir, "transactions-1.json", `[
		{"id":"t1","account_id":"a1","amount":-10,"date":"2026-05-02","description":"Old"},
		{"id":"t2","account_id":"a1","amount":-20,"date":"2026-05-03","description":"Lunch"}]`)
	writeFile(t, dir, "transactions-2.json", `[
		{"id":"t1","account_id":"a1","amount":-12,"date":"2026-05-02","description":"Corrected"},
		{"id":"t3","account_id":"a1","amount":50,"date":"2026-05-04","description":"Refund"},
		{"id":"t4","date":"nope"}]`)
	writeFile(t, dir, "budgets.json", `[{"id":"b1","category_id":"food","amount":300}]`)
	writeFile(t, dir, "goals.json", `[{"id":"g1","title":"Trip","target_amount":1000,"current_amount":100,"target_date":"2026-12-01"}]`)
	return dir
}

func TestLoadFilesMergesAndDedupes(t *testing.T) {
	var calls int
	res, err := LoadFiles(exportDir(t), func(current, total int) { calls++ })
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if res.TotalFiles != 5 || res.ParsedFiles != 5 || res.FileErrors != 0 {
		t.Errorf("files total/parsed/errors = %d/%d/%d", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
	if calls != 5 {
		t.Errorf("progress calls = %d, want 5", calls)
	}

	txs := res.Snapshot.Transactions
	if len(txs) != 3 {
		t.Fatalf("transactions = %d, want 3", len(txs))
	}
	if txs[0].ID != "t1" || txs[0].Description != "Corrected" {
		t.Errorf("t1 = %+v, want first position with corrected content", txs[0])
	}
	if res.Source != SourceFiles {
		t.Errorf("Source = %q", res.Source)
	}
}

func TestLoadFilesBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "accounts.json", `{"not":"an array"}`)
	res, err := LoadFiles(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.FileErrors != 1 || len(res.Warnings) != 1 {
		t.Errorf("FileErrors = %d, Warnings = %v", res.FileErrors, res.Warnings)
	}
}

func openCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "fburn.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadSnapshotFilesUseCache(t *testing.T) {
	dir := exportDir(t)
	cache := openCache(t)
	opts := LoadOptions{DataDir: dir, Cache: cache}

	first, err := LoadSnapshot(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Source != SourceFiles {
		t.Errorf("first Source = %q, want files", first.Source)
	}

	second, err := LoadSnapshot(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.Source != "cache:files" {
		t.Errorf("second Source = %q, want cache:files", second.Source)
	}
	if len(second.Snapshot.Transactions) != 3 {
		t.Errorf("cached transactions = %d, want 3", len(second.Snapshot.Transactions))
	}

	// Touching a file invalidates the cached snapshot.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "goals.json"), future, future); err != nil {
		t.Fatal(err)
	}
	third, err := LoadSnapshot(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Source != SourceFiles {
		t.Errorf("third Source = %q, want files after change", third.Source)
	}
}

type fakeFetcher struct {
	snap  model.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) FetchSnapshot(context.Context) (*apiclient.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &apiclient.FetchResult{Snapshot: f.snap, Skipped: 2}, nil
}

func TestLoadSnapshotAPI(t *testing.T) {
	cache := openCache(t)
	fetcher := &fakeFetcher{snap: sampleSnapshot()}

	res, err := LoadSnapshot(context.Background(), LoadOptions{Cache: cache, Fetcher: fetcher})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceAPI || res.Skipped != 2 {
		t.Errorf("Source/Skipped = %q/%d", res.Source, res.Skipped)
	}

	// With a cached snapshot and no refresh, the API is not called again.
	res, err = LoadSnapshot(context.Background(), LoadOptions{Cache: cache, Fetcher: fetcher})
	if err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 1 || res.Source != "cache:api" {
		t.Errorf("calls = %d, Source = %q, want 1 and cache:api", fetcher.calls, res.Source)
	}

	// A failed refresh falls back to the cache with a warning.
	fetcher.err = apiclient.ErrRateLimited
	res, err = LoadSnapshot(context.Background(), LoadOptions{Cache: cache, Fetcher: fetcher, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || len(res.Snapshot.Accounts) != 3 {
		t.Errorf("fallback warnings = %v, accounts = %d", res.Warnings, len(res.Snapshot.Accounts))
	}
}

func TestLoadSnapshotAPIErrorWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{err: apiclient.ErrUnauthorized}
	_, err := LoadSnapshot(context.Background(), LoadOptions{Fetcher: fetcher})
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLoadSnapshotNoData(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), LoadOptions{DataDir: t.TempDir(), Cache: openCache(t)})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestLoadSnapshotAppliesThresholdDefaults(t *testing.T) {
	res, err := LoadSnapshot(context.Background(), LoadOptions{
		DataDir:           exportDir(t),
		WarningThreshold:  dec("0.7"),
		CriticalThreshold: dec("1.1"),
	})
	if err != nil {
		t.Fatal(err)
	}
	b := res.Snapshot.Budgets[0]
	if b.Warning().String() != "0.7" || b.Critical().String() != "1.1" {
		t.Errorf("thresholds = %s/%s, want 0.7/1.1", b.Warning(), b.Critical())
	}
}

func TestApplyThresholdDefaultsKeepsExplicit(t *testing.T) {
	in := []model.Budget{{ID: "x", WarningThreshold: dec("0.5")}}
	out := ApplyThresholdDefaults(in, dec("0.9"), dec("1"))
	if out[0].WarningThreshold.String() != "0.5" || out[0].CriticalThreshold.String() != "1" {
		t.Errorf("out = %+v", out[0])
	}
	if !in[0].CriticalThreshold.IsZero() {
		t.Error("ApplyThresholdDefaults modified its input")
	}
}

func TestGoalProgressSameAfterCacheRoundTrip(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	saved := time.Local
	time.Local = la
	t.Cleanup(func() { time.Local = saved })

	dir := t.TempDir()
	writeFile(t, dir, "goals.json", `[{"id":"g1","title":"Trip","target_amount":1000,"current_amount":100,
		"target_date":"2026-04-30T00:00:00Z"}]`)
	writeFile(t, dir, "budgets.json", `[{"id":"b1","category_id":"food","amount":300,
		"period_start":"2026-03-01T00:00:00Z","period_end":"2026-03-31T00:00:00Z"}]`)

	fresh, err := LoadFiles(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	cache := openCache(t)
	if err := cache.SaveSnapshot(fresh.Snapshot, SourceFiles, nil); err != nil {
		t.Fatal(err)
	}
	cached, _, err := cache.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	today := time.Date(2026, 3, 1, 10, 0, 0, 0, la)
	before := ProgressFor(fresh.Snapshot.Goals[0], today)
	after := ProgressFor(cached.Goals[0], today)
	if before.DaysRemaining != 60 || after.DaysRemaining != before.DaysRemaining {
		t.Errorf("DaysRemaining fresh=%d cached=%d, want 60 for both", before.DaysRemaining, after.DaysRemaining)
	}
	if before.RecommendedMonthlySaving == nil || after.RecommendedMonthlySaving == nil ||
		!before.RecommendedMonthlySaving.Equal(*after.RecommendedMonthlySaving) {
		t.Errorf("RecommendedMonthlySaving fresh=%v cached=%v", before.RecommendedMonthlySaving, after.RecommendedMonthlySaving)
	}
	if !fresh.Snapshot.Budgets[0].PeriodEnd.Equal(cached.Budgets[0].PeriodEnd) {
		t.Errorf("PeriodEnd fresh=%s cached=%s", fresh.Snapshot.Budgets[0].PeriodEnd, cached.Budgets[0].PeriodEnd)
	}

	wantFP, _ := fresh.Snapshot.Fingerprint()
	gotFP, _ := cached.Fingerprint()
	if wantFP != gotFP {
		t.Errorf("fingerprint changed across the cache: %x -> %x", wantFP, gotFP)
	}
}
