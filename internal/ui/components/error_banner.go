package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/clickdash/internal/ui/styles"
)

// Auto-hide delays. The create flow keeps its banner up longer.
const (
	CreateFlowErrorDelay = 7 * time.Second
	AnalyticsErrorDelay  = 5 * time.Second
)

// BannerExpiredMsg hides a banner if it is still on the same generation.
type BannerExpiredMsg struct {
	ID         string
	Generation int
}

// ErrorBanner is an inline error message that hides itself after a delay.
// Presenting again restarts the delay; older timers are ignored.
type ErrorBanner struct {
	id         string
	message    string
	delay      time.Duration
	generation int
	visible    bool
}

// NewErrorBanner creates a hidden banner. id tells banners on different tabs
// apart when their expiry messages are broadcast.
func NewErrorBanner(id string, delay time.Duration) ErrorBanner {
	return ErrorBanner{id: id, delay: delay}
}

// Present shows message and schedules the hide.
func (b *ErrorBanner) Present(message string) tea.Cmd {
	b.message = message
	b.visible = true
	b.generation++

	id, gen := b.id, b.generation
	return tea.Tick(b.delay, func(time.Time) tea.Msg {
		return BannerExpiredMsg{ID: id, Generation: gen}
	})
}

// Hide hides the banner immediately and invalidates pending timers.
func (b *ErrorBanner) Hide() {
	b.visible = false
	b.generation++
}

// Update handles expiry messages.
func (b *ErrorBanner) Update(msg tea.Msg) {
	expired, ok := msg.(BannerExpiredMsg)
	if !ok || expired.ID != b.id {
		return
	}
	if expired.Generation == b.generation {
		b.visible = false
	}
}

// Visible reports whether the banner is showing.
func (b ErrorBanner) Visible() bool {
	return b.visible
}

// Message returns the last presented message.
func (b ErrorBanner) Message() string {
	return b.message
}

// Delay returns the auto-hide delay.
func (b ErrorBanner) Delay() time.Duration {
	return b.delay
}

// Generation returns the current generation.
func (b ErrorBanner) Generation() int {
	return b.generation
}

// View renders the banner, or nothing when hidden.
func (b ErrorBanner) View(width int) string {
	if !b.visible {
		return ""
	}
	style := styles.BannerStyle
	if width > 0 {
		style = style.Width(width)
	}
	return lipgloss.NewStyle().MarginBottom(1).Render(style.Render("✗ " + b.message))
}
