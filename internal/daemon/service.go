// Package daemon provides the long-running background finance monitor service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

// LoadFunc produces a fresh snapshot for each poll.
type LoadFunc func(ctx context.Context) (*pipeline.LoadResult, error)

// Notifier delivers budget alerts outside the process.
type Notifier interface {
	Publish(ctx context.Context, alert model.BudgetAlert) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir         string
	Load            LoadFunc
	Interval        time.Duration
	Addr            string
	EventsBuffer    int
	BudgetCheckCron string
	Notifier        Notifier
	Logger          *logrus.Logger
	MemoTTL         time.Duration
	Now             func() time.Time
}

// Summary is a compact finance state for status/event payloads.
type Summary struct {
	At           time.Time       `json:"at"`
	Source       string          `json:"source"`
	Accounts     int             `json:"accounts"`
	Transactions int             `json:"transactions"`
	Budgets      int             `json:"budgets"`
	Goals        int             `json:"goals"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Savings      decimal.Decimal `json:"savings"`
	OverBudget   int             `json:"over_budget"`
	Alerts       int             `json:"alerts"`
}

// Delta captures summary deltas between polls.
type Delta struct {
	Transactions int             `json:"transactions"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	OverBudget   int             `json:"over_budget"`
	Alerts       int             `json:"alerts"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.TotalBalance.IsZero() &&
		d.Income.IsZero() &&
		d.Expenses.IsZero() &&
		d.OverBudget == 0 &&
		d.Alerts == 0
}

// Event types emitted on /v1/events and /v1/stream.
const (
	EventSnapshot    = "snapshot"
	EventChange      = "finance_delta"
	EventBudgetAlert = "budget_alert"
)

// Event is emitted whenever the finance summary changes or an alert fires.
type Event struct {
	ID        int64              `json:"id"`
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Summary   Summary            `json:"summary"`
	Delta     Delta              `json:"delta"`
	Alert     *model.BudgetAlert `json:"alert,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir,omitempty"`
	BudgetCheckCron string    `json:"budget_check_cron"`
	LastBudgetCheck time.Time `json:"last_budget_check,omitempty"`
	AlertsSent      int64     `json:"alerts_sent"`
	Summary         Summary   `json:"summary"`
	Warnings        []string  `json:"warnings,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	log  *logrus.Logger
	memo *pipeline.Memo

	// checkMu serializes budget checks; the sent set is read before and
	// written after a blocking Publish.
	checkMu sync.Mutex

	mu              sync.RWMutex
	startedAt       time.Time
	lastPollAt      time.Time
	pollCount       int64
	lastError       string
	warnings        []string
	hasSnapshot     bool
	snap            model.Snapshot
	summary         Summary
	lastBudgetCheck time.Time
	alertsSent      int64
	sentMonth       string
	sent            map[string]bool
	nextEventID     int64
	events          []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}
	if cfg.BudgetCheckCron == "" {
		cfg.BudgetCheckCron = "0 8 * * *"
	}
	if cfg.MemoTTL <= 0 {
		cfg.MemoTTL = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		memo:      pipeline.NewMemo(cfg.MemoTTL),
		startedAt: cfg.Now(),
		sent:      make(map[string]bool),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the HTTP routes served by the daemon.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/budgets", s.handleBudgets).Methods(http.MethodGet)
	v1.HandleFunc("/budgets/{id}", s.handleBudget).Methods(http.MethodGet)
	v1.HandleFunc("/goals", s.handleGoals).Methods(http.MethodGet)
	v1.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// Run starts HTTP endpoints, polling and the budget check schedule until
// ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Load == nil {
		return errors.New("daemon: no snapshot loader configured")
	}

	// A check still waiting on a slow broker makes the next tick a no-op.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.log))))
	if _, err := scheduler.AddFunc(s.cfg.BudgetCheckCron, func() { s.checkBudgets(ctx) }); err != nil {
		return fmt.Errorf("scheduling budget check %q: %w", s.cfg.BudgetCheckCron, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Infof("fburn daemon listening on %s (poll every %s, budget check %q)",
		s.cfg.Addr, s.cfg.Interval, s.cfg.BudgetCheckCron)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	scheduler.Start()
	defer scheduler.Stop()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	res, err := s.cfg.Load(ctx)
	now := s.cfg.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Errorf("fburn daemon poll error: %v", err)
		return
	}
	for _, w := range res.Warnings {
		s.log.Warn(w)
	}

	dash := s.memo.Dashboard(res.Snapshot, now)
	summary := summarize(res, dash, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.summary
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snap = res.Snapshot
	s.summary = summary
	s.warnings = res.Warnings
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Summary:   summary,
		}
		publish = true
	} else {
		delta := diffSummaries(prev, summary)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      EventChange,
				Timestamp: now,
				Summary:   summary,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

// checkBudgets evaluates alerts on the latest snapshot and forwards each
// alert once per budget, level and month.
func (s *Service) checkBudgets(ctx context.Context) {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()
	now := s.cfg.Now()

	s.mu.Lock()
	if !s.hasSnapshot {
		s.mu.Unlock()
		s.log.Warn("budget check skipped: no snapshot loaded yet")
		return
	}
	snap := s.snap
	summary := s.summary
	month := calendar.MonthKey(now)
	if s.sentMonth != month {
		s.sentMonth = month
		s.sent = make(map[string]bool)
	}
	s.lastBudgetCheck = now
	s.mu.Unlock()

	alerts := pipeline.EvaluateAlerts(snap.Budgets, snap.Transactions, now)
	for i := range alerts {
		alert := alerts[i]
		key := alert.Key()

		s.mu.RLock()
		done := s.sent[key]
		s.mu.RUnlock()
		if done {
			continue
		}

		if s.cfg.Notifier != nil {
			if err := s.cfg.Notifier.Publish(ctx, alert); err != nil {
				s.log.WithField("budget_id", alert.BudgetID).Errorf("publishing alert: %v", err)
				continue
			}
		}

		s.mu.Lock()
		s.sent[key] = true
		s.alertsSent++
		s.nextEventID++
		ev := Event{
			ID:        s.nextEventID,
			Type:      EventBudgetAlert,
			Timestamp: now,
			Summary:   summary,
			Alert:     &alert,
		}
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"budget_id": alert.BudgetID,
			"level":     alert.Level,
			"month":     alert.Month,
		}).Info("budget alert")
		s.publishEvent(ev)
	}
}

func summarize(res *pipeline.LoadResult, dash model.Dashboard, at time.Time) Summary {
	over := 0
	for _, bc := range dash.Budgets {
		if bc.Status == model.BudgetOverBudget {
			over++
		}
	}
	return Summary{
		At:           at,
		Source:       res.Source,
		Accounts:     len(res.Snapshot.Accounts),
		Transactions: len(res.Snapshot.Transactions),
		Budgets:      len(res.Snapshot.Budgets),
		Goals:        len(res.Snapshot.Goals),
		TotalBalance: dash.TotalBalance,
		Income:       dash.Month.Income,
		Expenses:     dash.Month.Expenses,
		Savings:      dash.Month.Savings,
		OverBudget:   over,
		Alerts:       len(dash.Alerts),
	}
}

func diffSummaries(prev, curr Summary) Delta {
	return Delta{
		Transactions: curr.Transactions - prev.Transactions,
		TotalBalance: curr.TotalBalance.Sub(prev.TotalBalance),
		Income:       curr.Income.Sub(prev.Income),
		Expenses:     curr.Expenses.Sub(prev.Expenses),
		OverBudget:   curr.OverBudget - prev.OverBudget,
		Alerts:       curr.Alerts - prev.Alerts,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		BudgetCheckCron: s.cfg.BudgetCheckCron,
		LastBudgetCheck: s.lastBudgetCheck,
		AlertsSent:      s.alertsSent,
		Summary:         s.summary,
		Warnings:        s.warnings,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// dashboard returns the current dashboard, or false before the first
// successful poll.
func (s *Service) dashboard() (model.Dashboard, bool) {
	s.mu.RLock()
	snap, ok := s.snap, s.hasSnapshot
	s.mu.RUnlock()
	if !ok {
		return model.Dashboard{}, false
	}
	return s.memo.Dashboard(snap, s.cfg.Now()), true
}
