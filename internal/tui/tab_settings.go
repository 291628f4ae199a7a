package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldDataDir
	settingsFieldAPIURL
	settingsFieldWarning
	settingsFieldCritical
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	if key == "enter" {
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	}
	return a, nil, false
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	a.settings.editing = true
	a.settings.saved = false

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldCurrency:
		ti.Placeholder = "EUR"
		ti.SetValue(cfg.General.Currency)
	case settingsFieldDataDir:
		ti.Placeholder = "directory of JSON exports (empty for API only)"
		ti.SetValue(cfg.General.DataDir)
	case settingsFieldAPIURL:
		ti.Placeholder = "https://finance.example.com"
		ti.SetValue(cfg.API.BaseURL)
	case settingsFieldWarning:
		ti.Placeholder = "0.8"
		ti.SetValue(strconv.FormatFloat(cfg.Budget.DefaultWarningThreshold, 'f', -1, 64))
	case settingsFieldCritical:
		ti.Placeholder = "1.0"
		ti.SetValue(strconv.FormatFloat(cfg.Budget.DefaultCriticalThreshold, 'f', -1, 64))
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		reload := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if reload && a.settings.saved && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts.Load, a.cfg)
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and persists the edited field. It reports whether
// the change affects loaded data and needs a reload.
func (a *App) settingsSave() bool {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())
	reload := false

	parseFloat := func() (float64, bool) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("%q is not a number", val)
			return 0, false
		}
		return f, true
	}

	switch a.settings.cursor {
	case settingsFieldTheme:
		if theme.ByName(val).Name != val {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		cfg.Appearance.Theme = val
	case settingsFieldCurrency:
		if err := validateCurrency(val); err != nil {
			a.settings.saveErr = err
			return false
		}
		cfg.General.Currency = strings.ToUpper(val)
	case settingsFieldDataDir:
		cfg.General.DataDir = val
		reload = true
	case settingsFieldAPIURL:
		if err := validateOptionalURL("http", "https")(val); err != nil {
			a.settings.saveErr = err
			return false
		}
		cfg.API.BaseURL = strings.TrimRight(val, "/")
		reload = true
	case settingsFieldWarning:
		f, ok := parseFloat()
		if !ok {
			return false
		}
		cfg.Budget.DefaultWarningThreshold = f
		reload = true
	case settingsFieldCritical:
		f, ok := parseFloat()
		if !ok {
			return false
		}
		cfg.Budget.DefaultCriticalThreshold = f
		reload = true
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("%q is not true or false", val)
			return false
		}
		cfg.TUI.AutoRefresh = b
	case settingsFieldRefreshInterval:
		n, err := strconv.Atoi(val)
		if err != nil || n < 10 {
			a.settings.saveErr = fmt.Errorf("refresh interval must be at least 10 seconds")
			return false
		}
		cfg.TUI.RefreshIntervalSec = n
	}

	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		return false
	}
	if err := config.Save(cfg); err != nil {
		a.settings.saveErr = err
		return false
	}

	a.settings.saveErr = nil
	a.cfg = cfg
	a.autoRefresh = cfg.TUI.AutoRefresh
	a.refreshInterval = refreshIntervalFor(cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return reload
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orNotSet := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Currency", cfg.General.Currency},
		{"Data Directory", orNotSet(cfg.General.DataDir)},
		{"API URL", orNotSet(config.GetAPIURL(cfg))},
		{"Warning Threshold", strconv.FormatFloat(cfg.Budget.DefaultWarningThreshold, 'f', -1, 64)},
		{"Critical Threshold", strconv.FormatFloat(cfg.Budget.DefaultCriticalThreshold, 'f', -1, 64)},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(valueStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Save failed: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit/save  [Esc] cancel"))

	var info strings.Builder
	row := func(label, value string) {
		info.WriteString(labelStyle.Render(fmt.Sprintf("%-17s", label)) + valueStyle.Render(value) + "\n")
	}
	if r := a.result; r != nil {
		row("Source:", r.Source)
		row("Accounts:", cli.FormatNumber(int64(len(r.Snapshot.Accounts))))
		row("Transactions:", cli.FormatNumber(int64(len(r.Snapshot.Transactions))))
		row("Budgets:", cli.FormatNumber(int64(len(r.Snapshot.Budgets))))
		row("Goals:", cli.FormatNumber(int64(len(r.Snapshot.Goals))))
		if r.ParseErrors+r.Skipped > 0 {
			row("Skipped records:", cli.FormatNumber(int64(r.ParseErrors+r.Skipped)))
		}
	}
	row("Load time:", fmt.Sprintf("%.1fs", a.loadTime.Seconds()))
	row("Config file:", config.ConfigPath())
	row("Cache:", config.CachePath())
	if a.refreshErr != nil {
		info.WriteString(warnStyle.Render("Last refresh failed: " + a.refreshErr.Error()))
	}

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("Data", strings.TrimRight(info.String(), "\n"), cw)
}
