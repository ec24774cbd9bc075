package charts

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/clickdash/internal/models"
)

// Palette colours category segments by rank.
var Palette = []string{"#6366f1", "#8b5cf6", "#ec4899", "#f59e0b", "#10b981"}

// MaxSegments caps the proportional chart.
const MaxSegments = 5

const (
	minPlotWidth  = 10
	minPlotHeight = 3
	axisGutter    = 8
)

var (
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	legendCount = lipgloss.NewStyle().Bold(true)
)

// ColorForRank returns the palette colour of a rank position.
func ColorForRank(rank int) string {
	return Palette[rank%len(Palette)]
}

// TerminalFactory draws charts as text.
type TerminalFactory struct {
	Caption string
}

// New implements Factory.
func (f TerminalFactory) New(kind Kind, data Data) (Chart, error) {
	switch kind {
	case KindLine:
		return newLineChart(data.Series, f.Caption), nil
	case KindProportional:
		return newProportionalChart(data.Categories), nil
	default:
		return nil, fmt.Errorf("unsupported chart kind %s", kind)
	}
}

type viewKey struct {
	width, height int
}

type lineChart struct {
	cache   map[viewKey]string
	caption string
	labels  []string
	values  []float64
}

func newLineChart(s models.SeriesData, caption string) *lineChart {
	labels := make([]string, len(s.Labels))
	copy(labels, s.Labels)
	return &lineChart{
		cache:   make(map[viewKey]string),
		caption: caption,
		labels:  labels,
		values:  s.Floats(),
	}
}

func (c *lineChart) View(width, height int) string {
	if c.cache == nil {
		return ""
	}
	if len(c.values) == 0 {
		return emptyStyle.Render("No clicks recorded yet")
	}

	key := viewKey{width, height}
	if out, ok := c.cache[key]; ok {
		return out
	}

	plotWidth := max(width-axisGutter, minPlotWidth)
	plotHeight := integerHeight(c.values, max(height-2, minPlotHeight))

	data := c.values
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	opts := []asciigraph.Option{
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.Caption(c.caption),
	}
	if peak(c.values) < 1 {
		opts = append(opts, asciigraph.UpperBound(1))
	}
	graph := asciigraph.Plot(data, opts...)

	out := lipgloss.JoinVertical(lipgloss.Left, graph, c.axisLine(lipgloss.Width(graph)))
	c.cache[key] = out
	return out
}

// axisLine labels the first and last day under the plot.
func (c *lineChart) axisLine(width int) string {
	first := c.labels[0]
	last := c.labels[len(c.labels)-1]
	if first == last {
		return axisStyle.Render(first)
	}
	gap := max(width-len(first)-len(last), 1)
	return axisStyle.Render(first + strings.Repeat(" ", gap) + last)
}

func (c *lineChart) Dispose() {
	c.cache = nil
	c.values = nil
	c.labels = nil
}

// integerHeight shrinks the plot so every row is a whole click.
func integerHeight(values []float64, height int) int {
	top := peak(values)
	if top < 1 {
		return 1
	}
	if int(top) < height {
		return int(top)
	}
	return height
}

func peak(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	return top
}

type proportionalChart struct {
	entries  []models.CategoryEntry
	total    int
	disposed bool
}

func newProportionalChart(entries []models.CategoryEntry) *proportionalChart {
	if len(entries) > MaxSegments {
		entries = entries[:MaxSegments]
	}
	c := &proportionalChart{entries: make([]models.CategoryEntry, len(entries))}
	copy(c.entries, entries)
	for _, e := range c.entries {
		c.total += e.Count
	}
	return c
}

func (c *proportionalChart) View(width, _ int) string {
	if c.disposed {
		return ""
	}
	if c.total == 0 {
		return emptyStyle.Render("No browser data yet")
	}

	barWidth := max(width, minPlotWidth)
	widths := SegmentWidths(c.entries, barWidth)

	var bar strings.Builder
	for i, w := range widths {
		if w == 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForRank(i)))
		bar.WriteString(style.Render(strings.Repeat("█", w)))
	}

	lines := []string{bar.String(), ""}
	for i, e := range c.entries {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForRank(i))).Render("■")
		share := float64(e.Count) / float64(c.total) * 100
		lines = append(lines, fmt.Sprintf("%s %-8s %s  %5.1f%%",
			swatch, e.DisplayLabel, legendCount.Render(humanize.Comma(int64(e.Count))), share))
	}
	return strings.Join(lines, "\n")
}

func (c *proportionalChart) Dispose() {
	c.disposed = true
	c.entries = nil
}

// SegmentWidths splits width across entries in proportion to their counts.
// Non-zero entries get at least one cell and the widths sum to width; the cells
// left after flooring go to the largest remainders, earlier entries first on ties.
// When width is smaller than the number of non-zero entries, the first ones get
// one cell each.
func SegmentWidths(entries []models.CategoryEntry, width int) []int {
	widths := make([]int, len(entries))
	total := 0
	var nonZero []int
	for i, e := range entries {
		if e.Count > 0 {
			total += e.Count
			nonZero = append(nonZero, i)
		}
	}
	if total == 0 || width <= 0 {
		return widths
	}

	if width <= len(nonZero) {
		for _, i := range nonZero[:width] {
			widths[i] = 1
		}
		return widths
	}

	// One reserved cell per segment, the rest shared by count.
	spare := width - len(nonZero)
	type share struct {
		index     int
		remainder float64
	}
	shares := make([]share, 0, len(nonZero))
	used := 0
	for _, i := range nonZero {
		exact := float64(entries[i].Count) / float64(total) * float64(spare)
		whole := int(math.Floor(exact))
		widths[i] = 1 + whole
		used += whole
		shares = append(shares, share{index: i, remainder: exact - float64(whole)})
	}

	slices.SortStableFunc(shares, func(a, b share) int {
		return cmp.Compare(b.remainder, a.remainder)
	})
	for k := 0; k < spare-used; k++ {
		widths[shares[k].index]++
	}
	return widths
}
