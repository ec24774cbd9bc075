// Package components provides reusable UI components for the TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/clickdash/internal/ui/styles"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline of the last width values.
func RenderSparkline(values []int, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := 0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if maxVal > 0 && v > 0 {
			idx = v * (len(sparkChars) - 1) / maxVal
		}
		b.WriteRune(sparkChars[idx])
	}

	return lipgloss.NewStyle().Foreground(styles.Accent).Render(b.String())
}
