// Package shorten provides the create tab: a two-field form that creates a
// short link and offers to open its analytics.
package shorten

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/alias"
	"github.com/j-veylop/clickdash/internal/api"
	"github.com/j-veylop/clickdash/internal/app"
	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/ui/components"
)

// BannerID identifies this tab's error banner.
const BannerID = "shorten"

// Backend creates short links.
type Backend interface {
	Shorten(ctx context.Context, req api.CreateRequest) (*api.CreateResult, error)
}

type createdMsg struct {
	err    error
	result *api.CreateResult
}

// formField represents the currently focused form element.
type formField int

const (
	fieldURL formField = iota
	fieldCustom
	fieldSubmit

	fieldCount = 3
)

type keyMap struct {
	Edit          key.Binding
	OpenAnalytics key.Binding
	Next          key.Binding
	Prev          key.Binding
	Submit        key.Binding
	Cancel        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("enter", "i", "n"),
			key.WithHelp("enter", "new link"),
		),
		OpenAnalytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "open analytics"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "create"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave form"),
		),
	}
}

// Model represents the create tab state.
type Model struct {
	backend      Backend
	result       *api.CreateResult
	urlInput     textinput.Model
	customInput  textinput.Model
	spinner      components.LoadingSpinner
	banner       components.ErrorBanner
	keys         keyMap
	focusedField formField
	width        int
	height       int
	editing      bool
	submitting   bool
}

// New creates the create tab.
func New(backend Backend) *Model {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://example.com/some/long/path"
	urlInput.CharLimit = 2048
	urlInput.Width = 50

	customInput := textinput.New()
	customInput.Placeholder = "optional, 3-20 letters or digits"
	customInput.CharLimit = 20
	customInput.Width = 50

	return &Model{
		backend:     backend,
		urlInput:    urlInput,
		customInput: customInput,
		spinner:     components.NewSpinner("Creating link..."),
		banner:      components.NewErrorBanner(BannerID, components.CreateFlowErrorDelay),
		keys:        defaultKeyMap(),
	}
}

// Init initializes the create tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the form has focus.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Update handles messages for the create tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m, m.updateForm(msg)
		}
		return m, m.handleKeyMsg(msg)

	case createdMsg:
		return m, m.handleCreated(msg)

	case components.BannerExpiredMsg:
		m.banner.Update(msg)

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.OpenAnalytics):
		if m.result == nil {
			return nil
		}
		a := m.result.Alias
		return func() tea.Msg {
			return app.LoadAnalyticsMsg{Alias: a}
		}

	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		m.focusedField = fieldURL
		m.updateFormFocus()
		return textinput.Blink
	}
	return nil
}

// updateForm handles keys while the form has focus.
func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.updateFormFocus()
		return nil

	case key.Matches(msg, m.keys.Next):
		m.focusedField = (m.focusedField + 1) % fieldCount
		m.updateFormFocus()
		return textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		m.updateFormFocus()
		return textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldSubmit || m.focusedField == fieldCustom {
			return m.submit()
		}
		m.focusedField++
		m.updateFormFocus()
		return textinput.Blink
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case fieldCustom:
		m.customInput, cmd = m.customInput.Update(msg)
	}
	return cmd
}

// updateFormFocus focuses the input under focusedField.
func (m *Model) updateFormFocus() {
	m.urlInput.Blur()
	m.customInput.Blur()

	if !m.editing {
		return
	}
	switch m.focusedField {
	case fieldURL:
		m.urlInput.Focus()
	case fieldCustom:
		m.customInput.Focus()
	}
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}

	req := api.CreateRequest{
		URL:    strings.TrimSpace(m.urlInput.Value()),
		Custom: strings.TrimSpace(m.customInput.Value()),
	}
	if err := alias.ValidateCreate(req.URL, req.Custom); err != nil {
		return m.banner.Present(describeError(err))
	}
	if m.backend == nil {
		return m.banner.Present(describeError(errors.New("no backend configured")))
	}

	m.submitting = true
	backend := m.backend
	create := func() tea.Msg {
		res, err := backend.Shorten(context.Background(), req)
		return createdMsg{result: res, err: err}
	}
	return tea.Batch(create, m.spinner.Tick())
}

func (m *Model) handleCreated(msg createdMsg) tea.Cmd {
	m.submitting = false

	if msg.err != nil {
		logger.Warn("create failed", "error", msg.err)
		return m.banner.Present(describeError(msg.err))
	}

	m.result = msg.result
	m.banner.Hide()
	m.urlInput.SetValue("")
	m.customInput.SetValue("")
	m.editing = false
	m.focusedField = fieldURL
	m.updateFormFocus()

	res := *msg.result
	return func() tea.Msg {
		return app.ShortLinkCreatedMsg{Alias: res.Alias, ShortURL: res.ShortURL}
	}
}

// describeError turns a create failure into the banner text.
func describeError(err error) string {
	var serverErr *api.ServerError

	switch {
	case errors.Is(err, alias.ErrEmptyURL):
		return "Please enter a URL."
	case errors.Is(err, alias.ErrURLScheme):
		return "URL must start with http:// or https://"
	case errors.Is(err, alias.ErrInvalidCustomAlias):
		return "Alias may contain only letters and digits (3-20 characters)."
	case errors.Is(err, api.ErrAliasTaken):
		return "This alias is already taken. Please choose another one."
	case errors.Is(err, api.ErrInvalidAlias):
		return "Invalid alias. Use only letters and digits (3-20 characters)."
	case errors.Is(err, api.ErrInvalidURL):
		return "Invalid URL. Please enter a valid URL."
	case errors.As(err, &serverErr):
		if serverErr.Status == 500 {
			return "Internal server error. Try again later."
		}
		return serverErr.Message
	}

	switch api.KindOf(err) {
	case api.KindTransport:
		return "Could not reach the server."
	case api.KindMalformedResponse:
		return "The server sent a response that could not be read."
	default:
		return err.Error()
	}
}

// SetSize sets the available size for the create tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Result returns the last created link, or nil.
func (m *Model) Result() *api.CreateResult {
	return m.result
}

// Banner returns the tab's error banner.
func (m *Model) Banner() components.ErrorBanner {
	return m.banner
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Edit, m.keys.OpenAnalytics}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.OpenAnalytics},
		{m.keys.Next, m.keys.Prev},
		{m.keys.Submit, m.keys.Cancel},
	}
}
