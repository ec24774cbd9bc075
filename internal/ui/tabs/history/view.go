package history

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/clickdash/internal/app"
	"github.com/j-veylop/clickdash/internal/models"
	"github.com/j-veylop/clickdash/internal/ui/styles"
)

const aliasColumnWidth = 22

// View renders the history tab.
func (m *Model) View() string {
	if m.state.IsLoading(app.ResourceHistory) && len(m.state.GetLookups()) == 0 {
		return m.renderLoading()
	}

	entries := m.entries()
	if len(entries) == 0 {
		return m.renderEmpty()
	}

	cardWidth := max(m.width-6, 40)

	var bookmarks, lookups []string
	for i, e := range entries {
		line := m.renderEntry(e, i == m.cursor)
		if e.bookmark != nil {
			bookmarks = append(bookmarks, line)
		} else {
			lookups = append(lookups, line)
		}
	}

	sections := []string{m.renderHeader()}
	if len(bookmarks) > 0 {
		sections = append(sections, m.renderCard("★ Bookmarks", bookmarks, cardWidth))
	}
	if len(lookups) > 0 {
		sections = append(sections, m.renderCard("Recent lookups", lookups, cardWidth))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history..."))
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No lookups yet."),
		styles.HelpStyle.Render("Aliases appear here after you open them in the Analytics tab."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d bookmarks · %d recent lookups",
		len(m.state.GetBookmarks()), len(m.state.GetLookups())))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCard(title string, rows []string, width int) string {
	content := append([]string{styles.CardTitleStyle.Render(title)}, rows...)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

func (m *Model) renderEntry(e entry, selected bool) string {
	var line string
	if e.bookmark != nil {
		line = renderBookmark(*e.bookmark)
	} else {
		line = m.renderLookup(*e.lookup)
	}

	if selected {
		return styles.SelectedListItemStyle.Render("▸ " + line)
	}
	return styles.ListItemStyle.Render("  " + line)
}

func renderBookmark(b models.Bookmark) string {
	name := truncate(b.DisplayName(), aliasColumnWidth)
	detail := "saved " + humanize.Time(b.AddedAt)
	if b.Label != "" {
		detail = b.Alias + " · " + detail
	}
	return fmt.Sprintf("%-*s %s", aliasColumnWidth, name, styles.HelpStyle.Render(detail))
}

func (m *Model) renderLookup(l models.Lookup) string {
	star := " "
	if m.state.IsBookmarked(l.Alias) {
		star = styles.WarningTextStyle.Render("★")
	}
	counts := fmt.Sprintf("%s total · %s today",
		humanize.Comma(int64(l.TotalClicks)), humanize.Comma(int64(l.TodayCount)))

	return fmt.Sprintf("%s %-*s %-28s %s",
		star,
		aliasColumnWidth, truncate(l.Alias, aliasColumnWidth),
		counts,
		styles.HelpStyle.Render(humanize.Time(l.FetchedAt)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
