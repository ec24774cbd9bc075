package charts

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
)

const (
	exportWidth      = 960
	exportHeight     = 480
	pieSize          = 512
	maxExportXLabels = 8
	yTickTarget      = 5
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// PNGExporter writes the two dashboard charts as PNG files.
type PNGExporter struct {
	Dir string
}

// NewPNGExporter creates an exporter writing into dir.
func NewPNGExporter(dir string) *PNGExporter {
	return &PNGExporter{Dir: dir}
}

// Export renders the series and category charts of view and returns the
// written paths in that order.
func (e *PNGExporter) Export(alias string, view models.ViewData) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	base := ExportBaseName(alias)
	id := uuid.NewString()

	var seriesBuf bytes.Buffer
	if err := renderSeriesPNG(&seriesBuf, alias, view.Series); err != nil {
		return nil, fmt.Errorf("failed to render series chart: %w", err)
	}

	var categoryBuf bytes.Buffer
	if err := renderCategoryPNG(&categoryBuf, view.TopCategories); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}

	paths := []string{
		filepath.Join(e.Dir, fmt.Sprintf("%s-series-%s.png", base, id)),
		filepath.Join(e.Dir, fmt.Sprintf("%s-category-%s.png", base, id)),
	}
	for i, buf := range []*bytes.Buffer{&seriesBuf, &categoryBuf} {
		if err := os.WriteFile(paths[i], buf.Bytes(), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", paths[i], err)
		}
	}

	logger.Info("charts exported", "alias", alias, "series", paths[0], "category", paths[1])
	return paths, nil
}

// ExportBaseName makes alias safe to use in a file name.
func ExportBaseName(alias string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(alias, "_"), "_")
	if name == "" {
		return "alias"
	}
	return name
}

func renderSeriesPNG(buf *bytes.Buffer, alias string, s models.SeriesData) error {
	xs := make([]float64, s.Len())
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := s.Floats()

	xAxis := chart.XAxis{Ticks: dayTicks(s.Labels)}
	switch len(xs) {
	case 0:
		xs, ys = []float64{0, 1}, []float64{0, 0}
	case 1:
		xAxis.Range = &chart.ContinuousRange{Min: -1, Max: 1}
	}

	top, step := integerAxis(peak(ys))
	yTicks := make([]chart.Tick, 0, int(top/step)+1)
	for v := 0.0; v <= top; v += step {
		yTicks = append(yTicks, chart.Tick{Value: v, Label: fmt.Sprintf("%d", int(v))})
	}

	primary := hexColor(Palette[0])
	ch := chart.Chart{
		Title:  "Clicks per day: " + alias,
		Width:  exportWidth,
		Height: exportHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 24},
		},
		XAxis: xAxis,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			Ticks: yTicks,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Clicks",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: primary,
					StrokeWidth: 2,
					FillColor:   primary.WithAlpha(48),
					DotColor:    primary,
					DotWidth:    4,
				},
			},
		},
	}

	return ch.Render(chart.PNG, buf)
}

// dayTicks thins labels so at most maxExportXLabels are drawn.
func dayTicks(labels []string) []chart.Tick {
	if len(labels) == 0 {
		return nil
	}
	stride := int(math.Ceil(float64(len(labels)) / maxExportXLabels))
	ticks := make([]chart.Tick, 0, maxExportXLabels+1)
	for i := 0; i < len(labels); i += stride {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if lastIdx := len(labels) - 1; lastIdx%stride != 0 {
		ticks = append(ticks, chart.Tick{Value: float64(lastIdx), Label: labels[lastIdx]})
	}
	return ticks
}

// integerAxis returns a whole-number axis maximum and tick step covering
// peak. An all-zero series still gets a unit axis.
func integerAxis(peak float64) (top, step float64) {
	if peak < 1 {
		return 1, 1
	}
	step = math.Max(1, math.Ceil(peak/yTickTarget))
	top = step * math.Ceil(peak/step)
	return top, step
}

func renderCategoryPNG(buf *bytes.Buffer, entries []models.CategoryEntry) error {
	if len(entries) > MaxSegments {
		entries = entries[:MaxSegments]
	}

	values := make([]chart.Value, 0, len(entries))
	for i, e := range entries {
		if e.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(e.Count),
			Label: fmt.Sprintf("%s (%d)", e.DisplayLabel, e.Count),
			Style: chart.Style{
				FillColor:   hexColor(ColorForRank(i)),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
			},
		})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Value: 1,
			Label: "No data",
			Style: chart.Style{FillColor: hexColor("#d1d5db")},
		})
	}

	pie := chart.PieChart{
		Title:  "Browsers",
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}
	return pie.Render(chart.PNG, buf)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
