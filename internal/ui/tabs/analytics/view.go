package analytics

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/clickdash/internal/charts"
	"github.com/j-veylop/clickdash/internal/ui/components"
	"github.com/j-veylop/clickdash/internal/ui/styles"
)

const (
	seriesHeight   = 8
	sparklineDays  = 14
	shareBarWidth  = 16
	minContentWide = 40

	chartUnavailable = "Chart unavailable"
)

// View renders the analytics tab.
func (m *Model) View() string {
	width := max(m.width-6, minContentWide)

	sections := []string{
		m.renderTitle(),
		m.renderInput(),
	}

	if banner := m.banner.View(width); banner != "" {
		sections = append(sections, banner)
	}

	switch {
	case m.loading && !m.viewVisible:
		sections = append(sections, "", m.spinner.ViewWithLabel())
	case m.viewVisible:
		if m.loading {
			sections = append(sections, m.spinner.ViewWithLabel())
		}
		sections = append(sections, m.renderDashboard(width))
	case !m.banner.Visible():
		sections = append(sections, "", styles.HelpStyle.Render("Press / and type an alias to see its clicks."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Analytics")
	subtitle := styles.HelpStyle.Render("Clicks, browsers and recent visitors of a short link")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderInput() string {
	box := styles.BlurredBorderStyle
	if m.input.Focused() {
		box = styles.FocusedBorderStyle
	}
	line := box.Render(m.input.View())

	if m.alias != "" && m.state.IsBookmarked(m.alias) {
		line = lipgloss.JoinHorizontal(lipgloss.Center, line, " ", styles.WarningTextStyle.Render("★ bookmarked"))
	}
	return line
}

func (m *Model) renderDashboard(width int) string {
	title := fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(styles.Accent).Render("◈"),
		styles.CardTitleStyle.Render(m.alias))

	series := m.slotView(charts.SlotSeries, width-4, seriesHeight)
	category := m.slotView(charts.SlotCategory, width-4, 0)

	table := components.RenderActivityTable(components.BuildActivityTable(m.view.Rows), width-4)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.renderStatCards(),
		"",
		styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Clicks per day"), series)),
		styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Top browsers"), category)),
		styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Recent activity"), table)),
	)
}

// slotView draws a chart slot, or a placeholder when its chart failed.
func (m *Model) slotView(slot charts.Slot, width, height int) string {
	if m.chartErrs[slot] != nil {
		return styles.HelpStyle.Render(chartUnavailable)
	}
	return m.charts.View(slot, width, height)
}

func (m *Model) renderStatCards() string {
	v := m.view

	total := statCard("Total clicks", humanize.Comma(int64(v.TotalClicks)), "")
	today := statCard("Today", humanize.Comma(int64(v.TodayCount)),
		components.RenderSparkline(v.Series.Counts, sparklineDays))
	month := statCard("This month", humanize.Comma(int64(v.MonthCount)),
		components.RenderShareBar(v.MonthCount, v.TotalClicks, shareBarWidth))

	return lipgloss.JoinHorizontal(lipgloss.Top, total, today, month)
}

func statCard(label, value, extra string) string {
	lines := []string{
		styles.StatValueStyle.Render(value),
		styles.StatLabelStyle.Render(label),
	}
	if extra != "" {
		lines = append(lines, extra)
	}
	return styles.StatCardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
