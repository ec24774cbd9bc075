package shorten

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/clickdash/internal/ui/styles"
)

// View renders the create tab.
func (m *Model) View() string {
	cardWidth := min(max(m.width-10, 50), 80)

	sections := []string{m.renderTitle()}

	if banner := m.banner.View(cardWidth); banner != "" {
		sections = append(sections, banner)
	}

	sections = append(sections, m.renderForm(cardWidth))

	if m.submitting {
		sections = append(sections, m.spinner.ViewWithLabel())
	}
	if m.result != nil {
		sections = append(sections, m.renderResult(cardWidth))
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Shorten")
	subtitle := styles.HelpStyle.Render("Create a short link, optionally with your own alias")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderForm(cardWidth int) string {
	var rows []string

	rows = append(rows, styles.CardTitleStyle.Render("New Short Link"))
	rows = append(rows, m.renderField("Long URL:", fieldURL, m.urlInput.View(), cardWidth)...)
	rows = append(rows, m.renderField("Custom alias:", fieldCustom, m.customInput.View(), cardWidth)...)

	submitStyle := styles.ButtonInactiveStyle
	if m.editing && m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, submitStyle.Render(" Shorten "))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return styles.ModalContentStyle.Width(cardWidth).Render(content)
}

func (m *Model) renderField(label string, field formField, input string, cardWidth int) []string {
	focused := m.editing && m.focusedField == field

	labelText := styles.BlurredStyle.Render("  " + label)
	box := styles.BlurredBorderStyle
	if focused {
		labelText = styles.FocusedStyle.Render("> " + label)
		box = styles.FocusedBorderStyle
	}

	return []string{labelText, box.Width(cardWidth - 10).Render(input), ""}
}

func (m *Model) renderResult(cardWidth int) string {
	rows := []string{
		styles.SuccessTextStyle.Bold(true).Render("✓ Link created"),
		"",
		styles.LinkStyle.Render(m.result.ShortURL),
		"",
		styles.HelpStyle.Render("Press a to open analytics for " + m.result.Alias),
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	if m.editing {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " create",
			styles.HelpKeyStyle.Render("Esc") + " leave form",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " new link",
		}
		if m.result != nil {
			shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("a")+" analytics")
		}
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
