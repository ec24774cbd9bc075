// Package charts owns the live chart instance of each dashboard slot.
package charts

import (
	"errors"
	"fmt"

	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
)

// Slot is a named region that holds at most one live chart.
type Slot int

const (
	SlotSeries Slot = iota
	SlotCategory
)

func (s Slot) String() string {
	switch s {
	case SlotSeries:
		return "series"
	case SlotCategory:
		return "category"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Kind is the visual encoding of a chart.
type Kind int

const (
	KindLine Kind = iota
	KindProportional
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindProportional:
		return "proportional"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// slotKinds is the only kind each slot accepts.
var slotKinds = map[Slot]Kind{
	SlotSeries:   KindLine,
	SlotCategory: KindProportional,
}

var (
	// ErrUnknownSlot is returned for a slot the manager does not know.
	ErrUnknownSlot = errors.New("unknown chart slot")
	// ErrKindMismatch is returned when a kind is rendered into the wrong slot.
	ErrKindMismatch = errors.New("chart kind does not match slot")
)

// Data is the input of one chart. Line charts read Series, proportional
// charts read Categories.
type Data struct {
	Series     models.SeriesData
	Categories []models.CategoryEntry
}

// ForSeries wraps a daily series.
func ForSeries(s models.SeriesData) Data {
	return Data{Series: s}
}

// ForCategories wraps ranked categories.
func ForCategories(c []models.CategoryEntry) Data {
	return Data{Categories: c}
}

// Chart is a live chart instance. Dispose releases whatever the instance
// holds; a disposed chart renders nothing.
type Chart interface {
	View(width, height int) string
	Dispose()
}

// Factory creates chart instances.
type Factory interface {
	New(kind Kind, data Data) (Chart, error)
}

// Manager holds the live chart of every slot. It is not safe for concurrent
// use; the TUI drives it from its update loop only.
type Manager struct {
	factory Factory
	live    map[Slot]Chart
}

// NewManager creates a manager with no live charts.
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory: factory,
		live:    make(map[Slot]Chart),
	}
}

// Render replaces the chart in slot. The previous instance is disposed and
// the slot cleared before the new one is created, so a failed creation
// leaves the slot empty.
func (m *Manager) Render(slot Slot, kind Kind, data Data) error {
	want, ok := slotKinds[slot]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if want != kind {
		return fmt.Errorf("%w: %s cannot hold %s", ErrKindMismatch, slot, kind)
	}

	m.dispose(slot)

	chart, err := m.factory.New(kind, data)
	if err != nil {
		logger.Warn("chart creation failed", "slot", slot.String(), "kind", kind.String(), "error", err)
		return fmt.Errorf("failed to create %s chart: %w", kind, err)
	}

	m.live[slot] = chart
	logger.Debug("chart rendered", "slot", slot.String(), "kind", kind.String())
	return nil
}

// Live returns the chart in slot, or nil.
func (m *Manager) Live(slot Slot) Chart {
	return m.live[slot]
}

// LiveCount returns how many slots hold a chart.
func (m *Manager) LiveCount() int {
	return len(m.live)
}

// View renders the chart in slot, or an empty string.
func (m *Manager) View(slot Slot, width, height int) string {
	chart, ok := m.live[slot]
	if !ok {
		return ""
	}
	return chart.View(width, height)
}

// DisposeAll empties every slot.
func (m *Manager) DisposeAll() {
	for slot := range m.live {
		m.dispose(slot)
	}
}

func (m *Manager) dispose(slot Slot) {
	chart, ok := m.live[slot]
	if !ok {
		return
	}
	chart.Dispose()
	delete(m.live, slot)
}
