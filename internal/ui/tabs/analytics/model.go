// Package analytics provides the analytics tab: alias input, counters, the two
// chart slots and the recent activity table.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/alias"
	transform "github.com/j-veylop/clickdash/internal/analytics"
	"github.com/j-veylop/clickdash/internal/api"
	"github.com/j-veylop/clickdash/internal/app"
	"github.com/j-veylop/clickdash/internal/charts"
	"github.com/j-veylop/clickdash/internal/config"
	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
	"github.com/j-veylop/clickdash/internal/ui/components"
)

// BannerID identifies this tab's error banner.
const BannerID = "analytics"

// Backend is what the tab needs from the service layer.
type Backend interface {
	LoadAnalytics(ctx context.Context, alias string) (*models.Snapshot, error)
	ExportCharts(alias string, view models.ViewData) ([]string, error)
}

// loadedMsg is the completion of one read. seq ties it to the request.
type loadedMsg struct {
	fetchedAt time.Time
	err       error
	snapshot  *models.Snapshot
	alias     string
	seq       int
}

// refreshTickMsg triggers an auto-refresh if no newer read happened since.
type refreshTickMsg struct {
	seq int
}

type keyMap struct {
	Focus    key.Binding
	Submit   key.Binding
	Blur     key.Binding
	Reload   key.Binding
	Export   key.Binding
	Bookmark key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "enter alias"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave input"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export png"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
	}
}

// Model represents the analytics tab state.
type Model struct {
	state    *app.State
	backend  Backend
	location *time.Location
	charts   *charts.Manager

	chartErrs map[charts.Slot]error

	input    textinput.Model
	spinner  components.LoadingSpinner
	banner   components.ErrorBanner
	viewport viewport.Model
	keys     keyMap

	// alias and view belong to the last successful read.
	alias string
	view  models.ViewData

	refreshInterval time.Duration
	latestSeq       int
	width           int
	height          int
	viewVisible     bool
	loading         bool
}

// New creates the analytics tab. cfg may be nil.
func New(state *app.State, backend Backend, cfg *config.Config) *Model {
	input := textinput.New()
	input.Placeholder = "alias"
	input.Prompt = "› "
	input.CharLimit = 64
	input.Width = 30

	m := &Model{
		state:    state,
		backend:  backend,
		location: time.Local,
		charts:   charts.NewManager(charts.TerminalFactory{Caption: "clicks per day"}),
		input:    input,
		spinner:  components.NewSpinner("Loading analytics..."),
		banner:   components.NewErrorBanner(BannerID, components.AnalyticsErrorDelay),
		viewport: viewport.New(0, 0),
		keys:     defaultKeyMap(),
	}
	if cfg != nil {
		if cfg.Location != nil {
			m.location = cfg.Location
		}
		m.refreshInterval = cfg.RefreshInterval
	}
	return m
}

// Init initializes the tab.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput reports whether the alias field has focus.
func (m *Model) CapturingInput() bool {
	return m.input.Focused()
}

// Update handles messages for the analytics tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.handleKeyMsg(msg)

	case app.LoadAnalyticsMsg:
		m.input.SetValue(msg.Alias)
		m.input.Blur()
		return m, m.load(msg.Alias)

	case loadedMsg:
		return m, m.handleLoaded(msg)

	case refreshTickMsg:
		if msg.seq == m.latestSeq && m.alias != "" && !m.loading {
			logger.Debug("auto-refresh", "alias", m.alias)
			return m, m.load(m.alias)
		}

	case components.BannerExpiredMsg:
		m.banner.Update(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.input.Blur()
		return m.load(m.input.Value())
	case key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Focus):
		m.input.Focus()
		return textinput.Blink

	case key.Matches(msg, m.keys.Reload):
		if m.alias != "" {
			return m.load(m.alias)
		}
		return m.load(m.input.Value())

	case key.Matches(msg, m.keys.Export):
		return m.exportCmd()

	case key.Matches(msg, m.keys.Bookmark):
		if m.alias == "" {
			return nil
		}
		a := m.alias
		return func() tea.Msg {
			return app.ToggleBookmarkMsg{Alias: a}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// load starts a read of raw. Every read gets a new sequence number; only the
// completion carrying the latest one is applied.
func (m *Model) load(raw string) tea.Cmd {
	normalized, err := alias.Normalize(raw)
	if err != nil {
		return m.banner.Present(describeError(raw, err))
	}

	m.latestSeq++
	seq := m.latestSeq
	m.loading = true
	m.state.SetLoading(app.ResourceAnalytics, true)
	m.spinner.SetLabel(fmt.Sprintf("Loading %s...", normalized))

	backend := m.backend
	fetch := func() tea.Msg {
		if backend == nil {
			return loadedMsg{seq: seq, alias: normalized, err: errors.New("no backend configured")}
		}
		snap, err := backend.LoadAnalytics(context.Background(), normalized)
		return loadedMsg{
			seq:       seq,
			alias:     normalized,
			snapshot:  snap,
			err:       err,
			fetchedAt: time.Now(),
		}
	}

	return tea.Batch(fetch, m.spinner.Tick())
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.seq != m.latestSeq {
		logger.Debug("discarding stale analytics result",
			"alias", msg.alias, "seq", msg.seq, "latest", m.latestSeq)
		return nil
	}

	m.loading = false
	m.state.SetLoading(app.ResourceAnalytics, false)

	if msg.err != nil {
		m.viewVisible = false
		m.charts.DisposeAll()
		return m.banner.Present(describeError(msg.alias, msg.err))
	}

	m.view = transform.Transform(msg.snapshot, msg.fetchedAt, m.location)
	m.alias = msg.alias
	m.viewVisible = true
	m.banner.Hide()
	m.renderCharts()

	m.state.SetCurrentAlias(msg.alias)
	m.state.MarkUpdated(msg.fetchedAt)

	return m.scheduleRefresh(msg.seq)
}

// renderCharts replaces both chart slots with the current view data. A
// failed slot stays empty and is drawn as unavailable.
func (m *Model) renderCharts() {
	m.chartErrs = map[charts.Slot]error{}
	if err := m.charts.Render(charts.SlotSeries, charts.KindLine, charts.ForSeries(m.view.Series)); err != nil {
		m.chartErrs[charts.SlotSeries] = err
	}
	if err := m.charts.Render(charts.SlotCategory, charts.KindProportional, charts.ForCategories(m.view.TopCategories)); err != nil {
		m.chartErrs[charts.SlotCategory] = err
	}
}

// ChartErr returns why slot could not be drawn for the current view, or nil.
func (m *Model) ChartErr(slot charts.Slot) error {
	return m.chartErrs[slot]
}

func (m *Model) scheduleRefresh(seq int) tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{seq: seq}
	})
}

func (m *Model) exportCmd() tea.Cmd {
	if !m.viewVisible || m.backend == nil {
		return app.NotifyWarning("Load an alias before exporting")
	}
	backend, a, view := m.backend, m.alias, m.view
	return func() tea.Msg {
		paths, err := backend.ExportCharts(a, view)
		return app.ExportResultMsg{Alias: a, Paths: paths, Error: err}
	}
}

// describeError turns a read failure into the banner text.
func describeError(a string, err error) string {
	switch api.KindOf(err) {
	case api.KindEmptyInput:
		return "Enter an alias to look up."
	case api.KindNotFound:
		return fmt.Sprintf("Alias %q not found.", a)
	case api.KindServer:
		var serverErr *api.ServerError
		if errors.As(err, &serverErr) && serverErr.Message != "" {
			return "Server error: " + serverErr.Message
		}
		return "Server error. Try again later."
	case api.KindMalformedResponse:
		return "The server sent a response that could not be read."
	case api.KindTransport:
		return "Could not reach the server."
	default:
		return fmt.Sprintf("Failed to load analytics: %v", err)
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// Alias returns the alias of the displayed view.
func (m *Model) Alias() string {
	return m.alias
}

// ViewData returns the displayed view data.
func (m *Model) ViewData() models.ViewData {
	return m.view
}

// ViewVisible reports whether the analytics view is shown.
func (m *Model) ViewVisible() bool {
	return m.viewVisible
}

// Loading reports whether a read is in flight.
func (m *Model) Loading() bool {
	return m.loading
}

// Banner returns the tab's error banner.
func (m *Model) Banner() components.ErrorBanner {
	return m.banner
}

// LiveCharts returns how many chart slots hold a chart.
func (m *Model) LiveCharts() int {
	return m.charts.LiveCount()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Focus,
		m.keys.Reload,
		m.keys.Export,
		m.keys.Bookmark,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Focus, m.keys.Submit, m.keys.Blur},
		{m.keys.Reload, m.keys.Export, m.keys.Bookmark},
	}
}
