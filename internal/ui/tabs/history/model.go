// Package history provides the history tab: saved bookmarks and the most
// recent successful lookups.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/app"
	"github.com/j-veylop/clickdash/internal/models"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Open     key.Binding
	Remove   key.Binding
	Bookmark key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open analytics"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove bookmark"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// entry is one selectable row. Bookmarks come first, then lookups.
type entry struct {
	lookup   *models.Lookup
	bookmark *models.Bookmark
	alias    string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
	cursor   int
}

// New creates a new history model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// entries lists bookmarks followed by lookups.
func (m *Model) entries() []entry {
	bookmarks := m.state.GetBookmarks()
	lookups := m.state.GetLookups()

	out := make([]entry, 0, len(bookmarks)+len(lookups))
	for i := range bookmarks {
		out = append(out, entry{alias: bookmarks[i].Alias, bookmark: &bookmarks[i]})
	}
	for i := range lookups {
		out = append(out, entry{alias: lookups[i].Alias, lookup: &lookups[i]})
	}
	return out
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case app.LookupsLoadedMsg, app.BookmarksLoadedMsg, app.ServiceEventMsg,
		app.ToggleBookmarkResultMsg, app.RemoveBookmarkResultMsg:
		m.clampCursor()
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	entries := m.entries()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		return func() tea.Msg {
			return app.RefreshMsg{Resource: app.ResourceHistory}
		}

	case key.Matches(msg, m.keys.Open):
		if e, ok := m.selected(entries); ok {
			return func() tea.Msg {
				return app.LoadAnalyticsMsg{Alias: e.alias}
			}
		}

	case key.Matches(msg, m.keys.Remove):
		if e, ok := m.selected(entries); ok && e.bookmark != nil {
			return func() tea.Msg {
				return app.RemoveBookmarkMsg{Alias: e.alias}
			}
		}

	case key.Matches(msg, m.keys.Bookmark):
		if e, ok := m.selected(entries); ok {
			return func() tea.Msg {
				return app.ToggleBookmarkMsg{Alias: e.alias}
			}
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) selected(entries []entry) (entry, bool) {
	if m.cursor < 0 || m.cursor >= len(entries) {
		return entry{}, false
	}
	return entries[m.cursor], true
}

// clampCursor keeps the cursor on a row after the lists change.
func (m *Model) clampCursor() {
	n := len(m.entries())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// Cursor returns the selected row index.
func (m *Model) Cursor() int {
	return m.cursor
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Open,
		m.keys.Bookmark,
		m.keys.Remove,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Open, m.keys.Bookmark, m.keys.Remove},
		{m.keys.Up, m.keys.Down, m.keys.Refresh},
	}
}
