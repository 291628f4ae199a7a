// Package tui provides the interactive Bubble Tea dashboard for fburn.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// LoadFunc loads a snapshot using the thresholds in cfg.
type LoadFunc func(ctx context.Context, cfg config.Config, progress pipeline.ProgressFunc) (*pipeline.LoadResult, error)

// Options configures a new App.
type Options struct {
	Load LoadFunc
	// Month pins the reference month; zero follows the wall clock.
	Month     time.Time
	NeedSetup bool
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

type tickMsg struct{}

const (
	tabOverview = iota
	tabBudgets
	tabGoals
	tabTransactions
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	loadTimeout      = 2 * time.Minute
)

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config
	memo *pipeline.Memo

	// Data
	result   *pipeline.LoadResult
	dash     model.Dashboard
	txs      []model.Transaction // newest first
	daily    []decimal.Decimal
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool
	refreshErr      error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	budgets  listState
	goals    listState
	txState  txState
	settings settingsState

	// First-run setup
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading progress from the loader goroutine
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

// listState is a cursor over a simple list.
type listState struct {
	cursor int
}

func (l *listState) move(delta, n int) {
	l.cursor = clamp(l.cursor+delta, 0, n-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// loadConfigOrDefault loads config, returning defaults on error so the TUI
// can start even with a broken config file.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

func refreshIntervalFor(cfg config.Config) time.Duration {
	d := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if d < 10*time.Second {
		d = 60 * time.Second
	}
	return d
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	cfg := loadConfigOrDefault()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:            opts,
		cfg:             cfg,
		memo:            pipeline.NewMemo(5 * time.Minute),
		needSetup:       opts.NeedSetup,
		setupVals:       SetupValuesFrom(cfg),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshIntervalFor(cfg),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		txState:         newTxState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts.Load, a.cfg, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// reference is the instant metrics are computed at.
func (a App) reference() time.Time {
	if !a.opts.Month.IsZero() {
		return a.opts.Month
	}
	return time.Now()
}

func (a *App) recompute() {
	if a.result == nil {
		return
	}
	ref := a.reference()
	snap := a.result.Snapshot
	a.dash = a.memo.Dashboard(snap, ref)
	a.daily = pipeline.DailyExpenses(snap.Transactions, ref)

	a.txs = make([]model.Transaction, len(snap.Transactions))
	copy(a.txs, snap.Transactions)
	sort.SliceStable(a.txs, func(i, j int) bool {
		return a.txs[i].Date.After(a.txs[j].Date)
	})

	a.budgets.move(0, len(a.dash.Budgets))
	a.goals.move(0, len(a.dash.Goals))
	a.txState.clampCursor(len(a.filteredTransactions()))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
			a.recompute()
		}
		if a.needSetup {
			a.setupForm = NewSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts.Load, a.cfg))
		}
		// Keep month-relative figures current when following the clock.
		if a.loaded && a.opts.Month.IsZero() && !calendar.SameMonth(a.dash.Reference, time.Now()) {
			a.recompute()
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.refreshErr = msg.Err
		if msg.Err == nil && msg.Result != nil {
			a.result = msg.Result
			a.loadErr = nil
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabTransactions && a.txState.searching {
		return a.updateTransactionSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabTransactions:
		if m, cmd, ok := a.updateTransactionsKey(key); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts.Load, a.cfg)
		}
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

// moveCursor moves the selection of the active list tab.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabBudgets:
		a.budgets.move(delta, len(a.dash.Budgets))
	case tabGoals:
		a.goals.move(delta, len(a.dash.Goals))
	case tabTransactions:
		if !a.txState.searching {
			a.txState.move(delta, len(a.filteredTransactions()))
		}
	case tabSettings:
		if !a.settings.editing {
			a.settings.cursor = clamp(a.settings.cursor+delta, 0, settingsFieldCount-1)
		}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := saveSetup(a.setupVals)
		a.settings.saveErr = err
		a.needSetup = false
		a.setupForm = nil
		if err != nil {
			return a, nil
		}
		a.cfg = cfg
		a.autoRefresh = cfg.TUI.AutoRefresh
		a.refreshing = true
		return a, refreshDataCmd(a.opts.Load, a.cfg)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// currency is the symbol used for aggregate figures.
func (a App) currency() string {
	if len(a.dash.Currencies) == 1 {
		return a.dash.Currencies[0]
	}
	return a.cfg.General.Currency
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  fburn needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fburn"))
	b.WriteString(subtitleStyle.Render(" · Personal Finance"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := clamp(a.width-30, 20, 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing export files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading finance data..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o b g t x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Transactions", []struct{ key, desc string }{
			{"/", "Search description or merchant"},
			{"f", "Cycle type filter"},
			{"Esc", "Clear search"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"Enter", "Edit setting"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		Month:       calendar.MonthKey(a.reference()),
		LoadTime:    fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Alerts:      len(a.dash.Alerts),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if a.result != nil {
		info.Source = a.result.Source
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil && a.activeTab != tabSettings:
		content = a.renderLoadError(cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabBudgets:
		content = a.renderBudgetsTab(cw)
	case a.activeTab == tabGoals:
		content = a.renderGoalsTab(cw)
	case a.activeTab == tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderLoadError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := errStyle.Render(a.loadErr.Error()) + "\n\n" +
		hintStyle.Render("Configure a data directory or API in Settings [x], then press r to retry.")
	return components.ContentCard("Could not load finance data", body, cw)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func loadDataCmd(load LoadFunc, cfg config.Config, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			res, err := load(ctx, cfg, progressFn)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()
		return <-sub
	}
}

func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func refreshDataCmd(load LoadFunc, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		res, err := load(ctx, cfg, nil)
		return RefreshDataMsg{Result: res, Err: err, LoadTime: time.Since(start)}
	}
}

// tabAtX maps a click column in the tab bar to a tab index.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
