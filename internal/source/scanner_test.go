package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"accounts.json",
		"transactions-2026-04.json",
		"Transactions-2026-05.JSON",
		"budgets.json",
		"goals.json",
		"categories.json",
		"notes.txt",
		filepath.Join("archive", "transactions-2025.json"),
		filepath.Join(".hidden", "goals.json"),
	} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	counts := CountByKind(files)
	want := map[Kind]int{KindAccounts: 1, KindTransactions: 3, KindBudgets: 1, KindGoals: 1}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s files = %d, want %d", k, counts[k], n)
		}
	}
	if len(files) != 6 {
		t.Errorf("len(files) = %d, want 6", len(files))
	}
}

func TestScanDirMissing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Errorf("ScanDir(missing) = %v, %v, want nil, nil", files, err)
	}
}
