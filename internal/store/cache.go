// Package store provides a SQLite-backed cache for the last loaded snapshot.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNoSnapshot is returned when the cache has never been filled.
var ErrNoSnapshot = errors.New("store: no cached snapshot")

const dateLayout = "2006-01-02"

// Cache provides SQLite-backed snapshot caching.
type Cache struct {
	db *sql.DB
}

// Meta describes the cached snapshot.
type Meta struct {
	Source      string
	FetchedAt   time.Time
	Fingerprint uint64
}

// Open opens or creates the cache database at the given path and applies
// schema migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveSnapshot replaces the cached snapshot. tracked lists the export files
// the snapshot was built from; it is empty for API snapshots.
func (c *Cache) SaveSnapshot(snap model.Snapshot, source string, tracked map[string]FileInfo) error {
	fp, err := snap.Fingerprint()
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"accounts", "transactions", "budgets", "goals", "snapshot_meta", "file_tracker"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, a := range snap.Accounts {
		_, err = tx.Exec(`INSERT OR REPLACE INTO accounts
			(id, name, type, owner_scope, currency, balance, bank_name, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(a.ID), a.Name, string(a.Type), string(a.OwnerScope), a.Currency,
			a.Balance.String(), a.BankName, boolInt(a.IsActive),
		)
		if err != nil {
			return fmt.Errorf("saving account %s: %w", a.ID, err)
		}
	}

	for _, t := range snap.Transactions {
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT OR REPLACE INTO transactions
			(id, account_id, amount, currency, date, description, category_id, merchant_name,
			 status, is_recurring, is_manual, notes, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(t.ID), string(t.AccountID), t.Amount.String(), t.Currency,
			t.Date.Format(time.RFC3339Nano), t.Description, string(t.CategoryID), t.MerchantName,
			string(t.Status), boolInt(t.IsRecurring), boolInt(t.IsManual), t.Notes, string(tags),
		)
		if err != nil {
			return fmt.Errorf("saving transaction %s: %w", t.ID, err)
		}
	}

	for _, b := range snap.Budgets {
		_, err = tx.Exec(`INSERT OR REPLACE INTO budgets
			(id, category_id, amount, period_start, period_end, warning_threshold, critical_threshold, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(b.ID), string(b.CategoryID), b.Amount.String(),
			formatDate(b.PeriodStart), formatDate(b.PeriodEnd),
			b.WarningThreshold.String(), b.CriticalThreshold.String(), boolInt(b.IsActive),
		)
		if err != nil {
			return fmt.Errorf("saving budget %s: %w", b.ID, err)
		}
	}

	for _, g := range snap.Goals {
		var planTarget, planRemaining, planStrategy sql.NullString
		var planMonths sql.NullInt64
		if g.Plan != nil {
			planTarget = sql.NullString{String: g.Plan.MonthlySavingTarget.String(), Valid: true}
			planRemaining = sql.NullString{String: g.Plan.RemainingAmount.String(), Valid: true}
			planStrategy = sql.NullString{String: g.Plan.Strategy, Valid: true}
			planMonths = sql.NullInt64{Int64: int64(g.Plan.MonthsRemaining), Valid: true}
		}
		_, err = tx.Exec(`INSERT OR REPLACE INTO goals
			(id, title, description, target_amount, current_amount, target_date, priority, status,
			 linked_account_id, plan_monthly_target, plan_months, plan_remaining, plan_strategy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(g.ID), g.Title, g.Description, g.TargetAmount.String(), g.CurrentAmount.String(),
			formatDate(g.TargetDate), g.Priority, string(g.Status), string(g.LinkedAccountID),
			planTarget, planMonths, planRemaining, planStrategy,
		)
		if err != nil {
			return fmt.Errorf("saving goal %s: %w", g.ID, err)
		}
	}

	fetched := snap.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}
	_, err = tx.Exec(`INSERT INTO snapshot_meta (id, source, fetched_at, fingerprint) VALUES (1, ?, ?, ?)`,
		source, fetched.UTC().Format(time.RFC3339Nano), strconv.FormatUint(fp, 16))
	if err != nil {
		return fmt.Errorf("saving snapshot meta: %w", err)
	}

	for path, fi := range tracked {
		_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
			VALUES (?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadMeta returns the metadata of the cached snapshot.
func (c *Cache) LoadMeta() (Meta, error) {
	var m Meta
	var fetched, fp string
	err := c.db.QueryRow("SELECT source, fetched_at, fingerprint FROM snapshot_meta WHERE id = 1").
		Scan(&m.Source, &fetched, &fp)
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, ErrNoSnapshot
	}
	if err != nil {
		return Meta{}, err
	}
	m.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetched)
	m.Fingerprint, _ = strconv.ParseUint(fp, 16, 64)
	return m, nil
}

// LoadSnapshot reads the cached snapshot.
func (c *Cache) LoadSnapshot() (model.Snapshot, Meta, error) {
	meta, err := c.LoadMeta()
	if err != nil {
		return model.Snapshot{}, Meta{}, err
	}

	snap := model.Snapshot{FetchedAt: meta.FetchedAt.Local()}
	if snap.Accounts, err = c.loadAccounts(); err != nil {
		return model.Snapshot{}, Meta{}, fmt.Errorf("loading accounts: %w", err)
	}
	if snap.Transactions, err = c.loadTransactions(); err != nil {
		return model.Snapshot{}, Meta{}, fmt.Errorf("loading transactions: %w", err)
	}
	if snap.Budgets, err = c.loadBudgets(); err != nil {
		return model.Snapshot{}, Meta{}, fmt.Errorf("loading budgets: %w", err)
	}
	if snap.Goals, err = c.loadGoals(); err != nil {
		return model.Snapshot{}, Meta{}, fmt.Errorf("loading goals: %w", err)
	}
	return snap, meta, nil
}

func (c *Cache) loadAccounts() ([]model.Account, error) {
	rows, err := c.db.Query(`SELECT id, name, type, owner_scope, currency, balance, bank_name, is_active
		FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var id, typ, balance string
		var scope, bank sql.NullString
		var active int
		if err := rows.Scan(&id, &a.Name, &typ, &scope, &a.Currency, &balance, &bank, &active); err != nil {
			return nil, err
		}
		a.ID = model.AccountID(id)
		a.Type = model.AccountType(typ)
		a.OwnerScope = model.OwnerScope(scope.String)
		a.BankName = bank.String
		a.IsActive = active != 0
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s balance: %w", id, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *Cache) loadTransactions() ([]model.Transaction, error) {
	rows, err := c.db.Query(`SELECT id, account_id, amount, currency, date, description, category_id,
		merchant_name, status, is_recurring, is_manual, notes, tags
		FROM transactions ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var id, account, amount, date, status string
		var currency, category, merchant, notes, tags sql.NullString
		var recurring, manual int
		if err := rows.Scan(&id, &account, &amount, &currency, &date, &t.Description, &category,
			&merchant, &status, &recurring, &manual, &notes, &tags); err != nil {
			return nil, err
		}
		t.ID = model.TransactionID(id)
		t.AccountID = model.AccountID(account)
		t.Currency = currency.String
		t.CategoryID = model.CategoryID(category.String)
		t.MerchantName = merchant.String
		t.Status = model.TransactionStatus(status)
		t.IsRecurring = recurring != 0
		t.IsManual = manual != 0
		t.Notes = notes.String
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", id, err)
		}
		if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", id, err)
		}
		if tags.Valid && tags.String != "" && tags.String != "null" {
			if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
				return nil, fmt.Errorf("transaction %s tags: %w", id, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *Cache) loadBudgets() ([]model.Budget, error) {
	rows, err := c.db.Query(`SELECT id, category_id, amount, period_start, period_end,
		warning_threshold, critical_threshold, is_active
		FROM budgets ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Budget
	for rows.Next() {
		var b model.Budget
		var id, category, amount string
		var start, end, warning, critical sql.NullString
		var active int
		if err := rows.Scan(&id, &category, &amount, &start, &end, &warning, &critical, &active); err != nil {
			return nil, err
		}
		b.ID = model.BudgetID(id)
		b.CategoryID = model.CategoryID(category)
		b.IsActive = active != 0
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("budget %s amount: %w", id, err)
		}
		b.WarningThreshold = parseDecimalOrZero(warning)
		b.CriticalThreshold = parseDecimalOrZero(critical)
		b.PeriodStart = parseDate(start)
		b.PeriodEnd = parseDate(end)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (c *Cache) loadGoals() ([]model.Goal, error) {
	rows, err := c.db.Query(`SELECT id, title, description, target_amount, current_amount, target_date,
		priority, status, linked_account_id, plan_monthly_target, plan_months, plan_remaining, plan_strategy
		FROM goals ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Goal
	for rows.Next() {
		var g model.Goal
		var id, target, current, status string
		var targetDate, desc, linked, planTarget, planRemaining, planStrategy sql.NullString
		var planMonths sql.NullInt64
		if err := rows.Scan(&id, &g.Title, &desc, &target, &current, &targetDate, &g.Priority, &status,
			&linked, &planTarget, &planMonths, &planRemaining, &planStrategy); err != nil {
			return nil, err
		}
		g.ID = model.GoalID(id)
		g.Description = desc.String
		g.Status = model.GoalStatus(status)
		g.LinkedAccountID = model.AccountID(linked.String)
		g.TargetDate = parseDate(targetDate)
		if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("goal %s target: %w", id, err)
		}
		if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("goal %s current: %w", id, err)
		}
		if planTarget.Valid {
			g.Plan = &model.GoalPlan{
				MonthlySavingTarget: parseDecimalOrZero(planTarget),
				MonthsRemaining:     int(planMonths.Int64),
				RemainingAmount:     parseDecimalOrZero(planRemaining),
				Strategy:            planStrategy.String,
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate reads a stored calendar date as local midnight.
func parseDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, s.String, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDecimalOrZero(s sql.NullString) decimal.Decimal {
	if !s.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}
