package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/model"
)

// BuildDashboard derives the full view of snap for the day of now.
// Every figure depends only on the calendar day, so the reference is
// normalized to midnight in now's location.
func BuildDashboard(snap model.Snapshot, now time.Time) model.Dashboard {
	ref := calendar.Midnight(now, now.Location())
	month := PeriodTransactions(snap.Transactions, ref)

	active := 0
	for _, a := range snap.Accounts {
		if a.IsActive {
			active++
		}
	}

	return model.Dashboard{
		Reference:    ref,
		TotalBalance: TotalBalance(snap.Accounts),
		Currencies:   ActiveCurrencies(snap.Accounts),
		Accounts:     active,
		Month:        Totals(month),
		Budgets:      ConsumeBudgets(snap.Budgets, snap.Transactions, ref),
		Goals:        GoalsProgress(snap.Goals, ref),
		Spending:     SpendingByCategory(month),
		Insights:     EstimateInsights(month),
		Alerts:       EvaluateAlerts(snap.Budgets, snap.Transactions, ref),
	}
}

// Memo caches dashboards keyed by snapshot fingerprint and reference day.
// Returned dashboards share slices between callers and must not be modified.
type Memo struct {
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a memo whose entries expire after ttl.
func NewMemo(ttl time.Duration) *Memo {
	return &Memo{cache: cache.New(ttl, 2*ttl)}
}

// Dashboard returns the memoized dashboard for snap, building it on a miss.
// A snapshot that cannot be fingerprinted is built directly.
func (m *Memo) Dashboard(snap model.Snapshot, now time.Time) model.Dashboard {
	fp, err := snap.Fingerprint()
	if err != nil {
		m.misses.Add(1)
		return BuildDashboard(snap, now)
	}

	key := fmt.Sprintf("%x/%s/%s", fp, now.Format("2006-01-02"), now.Location())
	if v, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return v.(model.Dashboard)
	}

	m.misses.Add(1)
	d := BuildDashboard(snap, now)
	m.cache.SetDefault(key, d)
	return d
}

// Stats returns the hit and miss counts.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// Flush drops every memoized dashboard.
func (m *Memo) Flush() {
	m.cache.Flush()
}
