package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/clickdash/internal/ui/styles"
	"github.com/j-veylop/clickdash/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if cfg := m.config; cfg != nil {
		refresh := "off"
		if cfg.RefreshInterval > 0 {
			refresh = cfg.RefreshInterval.String()
		}
		notify := "off"
		if cfg.NotifyNewClicks {
			notify = "on"
		}
		envFile := cfg.EnvFile
		if envFile == "" {
			envFile = "none"
		}

		rows = append(rows,
			renderRow("API", cfg.APIBaseURL),
			renderRow("Database", cfg.DatabasePath),
			renderRow("Bookmarks", cfg.BookmarksPath),
			renderRow("Exports", cfg.ExportDir),
			renderRow("Log File", cfg.LogPath),
			renderRow("Timezone", cfg.TimezoneName()),
			renderRow("Auto Refresh", refresh),
			renderRow("Notifications", notify),
			renderRow("Env File", envFile),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRow renders a key-value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the build information and local data counts.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About "+version.Name))
	rows = append(rows, "")

	rows = append(rows,
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	)

	bookmarks := humanize.Comma(int64(len(m.state.GetBookmarks())))
	lookups := humanize.Comma(int64(len(m.state.GetLookups())))
	rows = append(rows, fmt.Sprintf("Bookmarks: %s  Lookups: %s",
		styles.InfoTextStyle.Render(bookmarks),
		styles.InfoTextStyle.Render(lookups)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
