package charts

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/j-veylop/clickdash/internal/models"
)

type fakeChart struct {
	factory  *fakeFactory
	disposed bool
}

func (c *fakeChart) View(_, _ int) string {
	if c.disposed {
		return ""
	}
	return "fake"
}

func (c *fakeChart) Dispose() {
	if !c.disposed {
		c.disposed = true
		c.factory.live--
	}
}

// fakeFactory counts instances that were created but not disposed.
type fakeFactory struct {
	err      error
	created  []*fakeChart
	live     int
	maxLive  int
	liveSeen []int
}

func (f *fakeFactory) New(_ Kind, _ Data) (Chart, error) {
	f.liveSeen = append(f.liveSeen, f.live)
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeChart{factory: f}
	f.created = append(f.created, c)
	f.live++
	if f.live > f.maxLive {
		f.maxLive = f.live
	}
	return c, nil
}

func TestManager_RenderReplacesInstance(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)
	data := ForSeries(models.SeriesData{Labels: []string{"2024-01-01"}, Counts: []int{1}})

	for i := 0; i < 2; i++ {
		if err := m.Render(SlotSeries, KindLine, data); err != nil {
			t.Fatalf("Render #%d failed: %v", i, err)
		}
	}

	if m.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", m.LiveCount())
	}
	if f.live != 1 {
		t.Errorf("undisposed instances = %d, want 1", f.live)
	}
	if !f.created[0].disposed {
		t.Error("first instance was not disposed")
	}
	if m.Live(SlotSeries) != f.created[1] {
		t.Error("slot does not hold the newest instance")
	}
}

func TestManager_DisposeBeforeCreate(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)

	_ = m.Render(SlotSeries, KindLine, Data{})
	_ = m.Render(SlotSeries, KindLine, Data{})
	_ = m.Render(SlotCategory, KindProportional, Data{})
	_ = m.Render(SlotCategory, KindProportional, Data{})

	// The second series render must see zero live charts at creation time.
	want := []int{0, 0, 1, 1}
	for i, w := range want {
		if f.liveSeen[i] != w {
			t.Errorf("live at creation #%d = %d, want %d", i, f.liveSeen[i], w)
		}
	}
	if f.maxLive != 2 {
		t.Errorf("max live = %d, want 2 (one per slot)", f.maxLive)
	}
}

func TestManager_SlotsAreIndependent(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)

	_ = m.Render(SlotSeries, KindLine, Data{})
	_ = m.Render(SlotCategory, KindProportional, Data{})
	_ = m.Render(SlotCategory, KindProportional, Data{})

	if m.LiveCount() != 2 {
		t.Errorf("LiveCount = %d, want 2", m.LiveCount())
	}
	if f.created[0].disposed {
		t.Error("series chart disposed by category render")
	}
}

func TestManager_KindMismatch(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)
	_ = m.Render(SlotSeries, KindLine, Data{})

	err := m.Render(SlotSeries, KindProportional, Data{})
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("err = %v, want ErrKindMismatch", err)
	}
	if m.Live(SlotSeries) != f.created[0] {
		t.Error("mismatched render must not touch the live chart")
	}

	if err := m.Render(Slot(9), KindLine, Data{}); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err = %v, want ErrUnknownSlot", err)
	}
}

func TestManager_FailedCreateLeavesSlotEmpty(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)
	_ = m.Render(SlotSeries, KindLine, Data{})

	f.err = errors.New("boom")
	if err := m.Render(SlotSeries, KindLine, Data{}); err == nil {
		t.Fatal("Render should fail")
	}

	if m.Live(SlotSeries) != nil {
		t.Error("slot should be empty after failed creation")
	}
	if f.live != 0 {
		t.Errorf("undisposed instances = %d, want 0", f.live)
	}
	if m.View(SlotSeries, 40, 10) != "" {
		t.Error("empty slot should render nothing")
	}
}

func TestManager_DisposeAll(t *testing.T) {
	f := &fakeFactory{}
	m := NewManager(f)
	_ = m.Render(SlotSeries, KindLine, Data{})
	_ = m.Render(SlotCategory, KindProportional, Data{})

	m.DisposeAll()

	if m.LiveCount() != 0 || f.live != 0 {
		t.Errorf("LiveCount = %d, live = %d; want 0, 0", m.LiveCount(), f.live)
	}
}

func TestTerminalFactory_Line(t *testing.T) {
	m := NewManager(TerminalFactory{Caption: "Clicks per day"})
	data := ForSeries(models.SeriesData{
		Labels: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Counts: []int{3, 0, 5},
	})

	if err := m.Render(SlotSeries, KindLine, data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	view := m.View(SlotSeries, 60, 12)
	if !strings.Contains(view, "2024-01-01") || !strings.Contains(view, "2024-01-03") {
		t.Errorf("axis labels missing:\n%s", view)
	}
	if !strings.Contains(view, "Clicks per day") {
		t.Error("caption missing")
	}
	if strings.Contains(view, ".") {
		t.Errorf("value axis should use integer ticks:\n%s", view)
	}

	chart := m.Live(SlotSeries)
	chart.Dispose()
	if chart.View(60, 12) != "" {
		t.Error("disposed chart should render nothing")
	}
}

func TestTerminalFactory_LineEdgeCases(t *testing.T) {
	f := TerminalFactory{}
	tests := []struct {
		name   string
		series models.SeriesData
		want   string
	}{
		{"Empty", models.SeriesData{}, "No clicks recorded yet"},
		{"SinglePoint", models.SeriesData{Labels: []string{"2024-01-01"}, Counts: []int{4}}, "2024-01-01"},
		{"AllZero", models.SeriesData{Labels: []string{"a", "b"}, Counts: []int{0, 0}}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.New(KindLine, ForSeries(tt.series))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := c.View(40, 8); !strings.Contains(got, tt.want) {
				t.Errorf("View() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestTerminalFactory_Proportional(t *testing.T) {
	entries := []models.CategoryEntry{
		{DisplayLabel: "Chrome", Count: 10},
		{DisplayLabel: "Firefox", Count: 8},
		{DisplayLabel: "Other", Count: 1},
		{DisplayLabel: "Safari", Count: 1},
		{DisplayLabel: "Edge", Count: 1},
		{DisplayLabel: "Mobile", Count: 1},
	}

	c, err := TerminalFactory{}.New(KindProportional, ForCategories(entries))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	view := c.View(40, 10)
	for _, label := range []string{"Chrome", "Firefox", "Edge"} {
		if !strings.Contains(view, label) {
			t.Errorf("legend missing %s", label)
		}
	}
	if strings.Contains(view, "Mobile") {
		t.Error("chart must cap at 5 segments")
	}

	empty, _ := TerminalFactory{}.New(KindProportional, ForCategories(nil))
	if !strings.Contains(empty.View(40, 10), "No browser data yet") {
		t.Error("empty category chart should show placeholder")
	}
}

func TestSegmentWidths(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		width  int
	}{
		{"Even", []int{5, 5}, 20},
		{"Skewed", []int{97, 1, 1, 1}, 10},
		{"Rounding", []int{1, 1, 1}, 10},
		{"WithZero", []int{4, 0, 2}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]models.CategoryEntry, len(tt.counts))
			for i, c := range tt.counts {
				entries[i].Count = c
			}
			widths := SegmentWidths(entries, tt.width)

			sum := 0
			for i, w := range widths {
				sum += w
				if tt.counts[i] > 0 && w < 1 {
					t.Errorf("segment %d has width %d", i, w)
				}
				if tt.counts[i] == 0 && w != 0 {
					t.Errorf("zero segment %d has width %d", i, w)
				}
			}
			if sum != tt.width {
				t.Errorf("sum = %d, want %d (%v)", sum, tt.width, widths)
			}
		})
	}
}

func TestSegmentWidths_LargestRemainder(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		width  int
		want   []int
	}{
		{"EqualCountsSpreadRemainder", []int{1, 1, 1, 1, 1}, 7, []int{2, 2, 1, 1, 1}},
		{"EqualCountsExact", []int{3, 3}, 20, []int{10, 10}},
		{"LargestFractionWins", []int{97, 1, 1, 1}, 10, []int{7, 1, 1, 1}},
		{"RemainderNotAlwaysFirst", []int{5, 4, 1}, 5, []int{2, 2, 1}},
		{"NarrowerThanSegments", []int{4, 3, 2}, 2, []int{1, 1, 0}},
		{"ZeroSkipped", []int{2, 0, 2}, 5, []int{3, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]models.CategoryEntry, len(tt.counts))
			for i, c := range tt.counts {
				entries[i].Count = c
			}
			got := SegmentWidths(entries, tt.width)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SegmentWidths(%v, %d) = %v, want %v", tt.counts, tt.width, got, tt.want)
			}
		})
	}
}

func TestColorForRank(t *testing.T) {
	if ColorForRank(0) != "#6366f1" || ColorForRank(4) != "#10b981" {
		t.Error("palette order changed")
	}
	if ColorForRank(5) != ColorForRank(0) {
		t.Error("palette should wrap")
	}
}

func TestPNGExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewPNGExporter(dir)

	view := models.ViewData{
		Series: models.SeriesData{
			Labels: []string{"2024-01-01", "2024-01-02"},
			Counts: []int{3, 5},
		},
		TopCategories: []models.CategoryEntry{
			{DisplayLabel: "Chrome", Count: 10},
			{DisplayLabel: "Firefox", Count: 8},
		},
	}

	paths, err := e.Export("promo/1", view)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(paths))
	}
	for _, p := range paths {
		if !strings.HasPrefix(filepath.Base(p), "promo_1-") {
			t.Errorf("unexpected file name %s", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "\x89PNG") {
			t.Errorf("%s is not a PNG", p)
		}
	}
}

func TestPNGExporter_EmptyView(t *testing.T) {
	e := NewPNGExporter(t.TempDir())
	if _, err := e.Export("x", models.ViewData{}); err != nil {
		t.Fatalf("Export of empty view failed: %v", err)
	}

	single := models.ViewData{Series: models.SeriesData{Labels: []string{"2024-01-01"}, Counts: []int{2}}}
	if _, err := e.Export("x", single); err != nil {
		t.Fatalf("Export of single point failed: %v", err)
	}
}

func TestIntegerAxis(t *testing.T) {
	tests := []struct {
		peak      float64
		top, step float64
	}{
		{0, 1, 1},
		{3, 3, 1},
		{5, 5, 1},
		{7, 8, 2},
		{23, 25, 5},
	}
	for _, tt := range tests {
		top, step := integerAxis(tt.peak)
		if top != tt.top || step != tt.step {
			t.Errorf("integerAxis(%v) = %v,%v; want %v,%v", tt.peak, top, step, tt.top, tt.step)
		}
	}
}

func TestExportBaseName(t *testing.T) {
	tests := map[string]string{
		"promo":   "promo",
		"a b/c":   "a_b_c",
		"../../x": "x",
		"///":     "alias",
	}
	for in, want := range tests {
		if got := ExportBaseName(in); got != want {
			t.Errorf("ExportBaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
