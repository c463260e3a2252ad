// Package tui provides the interactive Bubble Tea planner for btcplan.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
	"github.com/theirongolddev/btcplan/internal/session"
	"github.com/theirongolddev/btcplan/internal/store"
	"github.com/theirongolddev/btcplan/internal/tui/components"
	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Options configures a planner session.
type Options struct {
	Input           model.ProjectionInput
	Currency        string
	Source          pricefeed.Source
	Quotes          *store.Quotes // nil disables history
	RefreshInterval time.Duration
	Timeout         time.Duration
	Offline         bool
	NeedSetup       bool
	Log             *zap.Logger
}

// field identifies a focusable planner input.
type field int

const (
	fieldUnits field = iota
	fieldPrice
	fieldCurrency
	fieldGrowth
	fieldDrawdown
	fieldCount
)

const (
	tabPlanner = iota
	tabChart
	tabHistory
)

// App is the root Bubble Tea model.
type App struct {
	state  *session.State
	src    pricefeed.Source
	quotes *store.Quotes
	log    *zap.Logger

	unitsIn textinput.Model
	priceIn textinput.Model
	focus   field

	// Price refresh
	offline         bool
	refreshInterval time.Duration
	timeout         time.Duration
	fetching        bool
	stale           bool
	lastAttempt     time.Time
	tickSeq         uint64
	fetchCtx        context.Context
	cancelFetch     context.CancelFunc
	now             time.Time

	history    []model.Quote
	historyErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 70
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new planner model.
func NewApp(opts Options) App {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = pricefeed.DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Source == nil {
		opts.Offline = true
	}

	st := session.New(opts.Currency)
	st.SetUnits(opts.Input.Units)
	st.SetPrice(opts.Input.Price)
	st.SetGrowth(opts.Input.GrowthPct)
	st.SetDrawdown(opts.Input.DrawdownPct)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Bitcoin).Background(theme.Active.Surface)

	a := App{
		state:           st,
		src:             opts.Source,
		quotes:          opts.Quotes,
		log:             opts.Log,
		unitsIn:         newNumberInput("0.5", formatInputNumber(st.Input().Units)),
		priceIn:         newNumberInput("110,000", formatInputNumber(st.Input().Price)),
		offline:         opts.Offline,
		refreshInterval: opts.RefreshInterval,
		timeout:         opts.Timeout,
		spinner:         sp,
		now:             time.Now(),
		needSetup:       opts.NeedSetup,
	}
	a.unitsIn.Focus()

	a.fetchCtx, a.cancelFetch = context.WithCancel(context.Background())
	a.fetching = !a.offline
	a.lastAttempt = a.now

	if a.needSetup {
		a.setupVals = DefaultSetupValues(config.DefaultConfig())
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

func newNumberInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 24
	ti.Width = 18
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

func formatInputNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		textinput.Blink,
		clockCmd(),
	}
	if a.fetching {
		cmds = append(cmds, a.spinner.Tick)
	}

	gen, ccy := a.state.PriceGen(), a.state.Currency()
	switch {
	case !a.offline:
		cmds = append(cmds, fetchPriceCmd(a.fetchCtx, a.src, gen, ccy, a.timeout))
	case a.quotes != nil:
		cmds = append(cmds, cachedPriceCmd(a.quotes, gen, ccy))
	}
	if a.quotes != nil {
		cmds = append(cmds, loadHistoryCmd(a.quotes, ccy))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
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
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKeys(msg)

	case PriceMsg:
		return a.applyPrice(msg)

	case priceTickMsg:
		if msg.Gen != a.state.PriceGen() || msg.Seq != a.tickSeq || a.offline {
			return a, nil
		}
		return a, a.startFetch()

	case historyMsg:
		if msg.Currency != a.state.Currency() {
			return a, nil
		}
		a.history, a.historyErr = msg.Quotes, msg.Err
		return a, nil

	case clockMsg:
		a.now = time.Time(msg)
		return a, clockCmd()

	case spinner.TickMsg:
		if !a.fetching {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Cursor blink and other input housekeeping.
	var cmd tea.Cmd
	switch a.focus {
	case fieldUnits:
		a.unitsIn, cmd = a.unitsIn.Update(msg)
	case fieldPrice:
		a.priceIn, cmd = a.priceIn.Update(msg)
	}
	return a, cmd
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "?":
		a.showHelp = true
		return a, nil
	case "[":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "]":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "ctrl+r":
		return a, a.refreshNow()
	}

	if a.activeTab == tabPlanner {
		switch key {
		case "tab", "down":
			return a, a.setFocus((a.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return a, a.setFocus((a.focus - 1 + fieldCount) % fieldCount)
		}

		if a.focus == fieldUnits || a.focus == fieldPrice {
			if key == "esc" || key == "enter" {
				return a, a.setFocus(fieldCurrency)
			}
			return a.updateTextField(msg)
		}

		switch key {
		case "left", "-":
			return a.stepField(-1)
		case "right", "+":
			return a.stepField(1)
		}
	} else {
		switch key {
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		return a, a.refreshNow()
	}
	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

func (a App) updateTextField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.focus {
	case fieldUnits:
		before := a.unitsIn.Value()
		a.unitsIn, cmd = a.unitsIn.Update(msg)
		if v := a.unitsIn.Value(); v != before {
			a.state.SetUnits(v)
		}
	case fieldPrice:
		before := a.priceIn.Value()
		a.priceIn, cmd = a.priceIn.Update(msg)
		if v := a.priceIn.Value(); v != before {
			a.state.SetPrice(v)
		}
	}
	return a, cmd
}

func (a *App) setFocus(f field) tea.Cmd {
	a.focus = f
	a.unitsIn.Blur()
	a.priceIn.Blur()
	switch f {
	case fieldUnits:
		a.unitsIn.CursorEnd()
		return a.unitsIn.Focus()
	case fieldPrice:
		a.priceIn.CursorEnd()
		return a.priceIn.Focus()
	}
	return nil
}

// stepField moves the focused selector by step.
func (a App) stepField(step int) (tea.Model, tea.Cmd) {
	switch a.focus {
	case fieldCurrency:
		a.state.StepCurrency(step)
		a.log.Debug("currency changed", zap.String("currency", a.state.Currency()), zap.Uint64("gen", a.state.PriceGen()))
		return a, a.onCurrencyChanged()
	case fieldGrowth:
		a.state.StepGrowth(step)
	case fieldDrawdown:
		a.state.StepDrawdown(step)
	}
	return a, nil
}

// onCurrencyChanged abandons the previous refresh chain and starts a new
// one under the state's new generation.
func (a *App) onCurrencyChanged() tea.Cmd {
	a.stale = false
	a.history = nil
	a.historyErr = nil

	var cmds []tea.Cmd
	if a.quotes != nil {
		cmds = append(cmds, loadHistoryCmd(a.quotes, a.state.Currency()))
	}
	if a.offline {
		if a.quotes != nil {
			cmds = append(cmds, cachedPriceCmd(a.quotes, a.state.PriceGen(), a.state.Currency()))
		}
		return tea.Batch(cmds...)
	}
	cmds = append(cmds, a.startFetch())
	return tea.Batch(cmds...)
}

// startFetch cancels any in-flight request and fetches under the current generation.
func (a *App) startFetch() tea.Cmd {
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	a.fetchCtx, a.cancelFetch = context.WithCancel(context.Background())
	a.fetching = true
	a.lastAttempt = time.Now()
	return tea.Batch(
		fetchPriceCmd(a.fetchCtx, a.src, a.state.PriceGen(), a.state.Currency(), a.timeout),
		a.spinner.Tick,
	)
}

// refreshNow fetches immediately when online. The result schedules a new
// tick, superseding the pending one.
func (a *App) refreshNow() tea.Cmd {
	if a.offline || a.fetching {
		return nil
	}
	return a.startFetch()
}

func (a App) applyPrice(msg PriceMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.state.PriceGen() {
		a.log.Debug("discarding stale price",
			zap.Uint64("gen", msg.Gen),
			zap.Uint64("current", a.state.PriceGen()),
			zap.String("currency", msg.Quote.Currency),
		)
		return a, nil
	}

	a.fetching = false
	var cmds []tea.Cmd
	if !a.offline {
		a.tickSeq++
		cmds = append(cmds, priceTickCmd(msg.Gen, a.tickSeq, a.refreshInterval))
	}

	if msg.Err != nil {
		if !a.offline {
			a.stale = true
			a.log.Warn("price refresh failed", zap.String("currency", msg.Quote.Currency), zap.Error(msg.Err))
		}
		return a, tea.Batch(cmds...)
	}

	if !a.state.ApplyQuote(msg.Gen, msg.Quote) {
		return a, tea.Batch(cmds...)
	}
	a.stale = false
	a.priceIn.SetValue(formatInputNumber(msg.Quote.Price))
	a.priceIn.CursorEnd()
	a.log.Debug("price accepted", zap.String("currency", msg.Quote.Currency), zap.Float64("price", msg.Quote.Price))

	if a.quotes != nil && !a.offline {
		cmds = append(cmds, recordQuoteCmd(a.quotes, msg.Quote, a.log))
	}
	return a, tea.Batch(cmds...)
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	a.state.Invalidate()
	return a, tea.Quit
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := config.LoadOrDefault()
		a.setupVals.Apply(&cfg)
		if err := config.Save(cfg); err != nil {
			a.log.Warn("saving setup config", zap.Error(err))
		}
		theme.SetActive(cfg.Appearance.Theme)
		a.needSetup = false
		a.setupForm = nil
		if cfg.General.DefaultCurrency != a.state.Currency() {
			a.state.SetCurrency(cfg.General.DefaultCurrency)
			return a, a.onCurrencyChanged()
		}
		return a, nil
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

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
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
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  btcplan needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.Bitcoin).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("₿ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Planner", []struct{ key, desc string }{
			{"tab ↓", "Next field"},
			{"S-tab ↑", "Previous field"},
			{"← →", "Change currency / rate"},
			{"enter esc", "Leave a number field"},
		}},
		{"General", []struct{ key, desc string }{
			{"p c h", "Jump to tab"},
			{"[ ]", "Previous / next tab"},
			{"r ^r", "Refresh price now"},
			{"?", "Toggle help"},
			{"q ^c", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
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
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.priceStatus())

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabPlanner:
		content = a.renderPlannerTab(cw)
	case tabChart:
		content = a.renderChartTab(cw, contentH)
	case tabHistory:
		content = a.renderHistoryTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) priceStatus() components.PriceStatus {
	src, at := a.state.PriceOrigin()
	ps := components.PriceStatus{
		Source:   src,
		Stale:    a.stale,
		Fetching: a.fetching,
		Offline:  a.offline,
		Spinner:  a.spinner.View(),
	}
	if !at.IsZero() {
		ps.Age = "updated " + humanize.RelTime(at, a.now, "ago", "from now")
	}
	if !a.offline && !a.fetching {
		ps.Refresh = components.RefreshBar(a.now.Sub(a.lastAttempt), a.refreshInterval, 10)
	}
	return ps
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes match RenderTabBar: tabs separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
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

// fillLinesWithBackground pads each line to width w with background color.
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
