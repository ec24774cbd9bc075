package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/clickdash/internal/ui/styles"
)

// ShareRatio returns part/whole clamped to [0, 1]. A zero whole is 0.
func ShareRatio(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	r := float64(part) / float64(whole)
	if r > 1 {
		r = 1
	}
	return r
}

// RenderShareBar renders part as a share of whole: a gradient bar followed by
// the percentage.
func RenderShareBar(part, whole, width int) string {
	if width < 10 {
		width = 10
	}

	bar := progress.New(
		progress.WithScaledGradient("#6366f1", "#ec4899"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	ratio := ShareRatio(part, whole)
	pct := styles.ProgressPercentStyle.Render(fmt.Sprintf("%.0f%%", ratio*100))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar.ViewAs(ratio), pct)
}
