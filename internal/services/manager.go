// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/clickdash/internal/analytics"
	"github.com/j-veylop/clickdash/internal/api"
	"github.com/j-veylop/clickdash/internal/charts"
	"github.com/j-veylop/clickdash/internal/config"
	"github.com/j-veylop/clickdash/internal/db"
	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
	"github.com/j-veylop/clickdash/internal/services/bookmarks"
)

// HistoryKeep is how many lookup rows survive pruning.
const HistoryKeep = 500

type (
	// BookmarksChangedEvent is emitted when the bookmark list changes.
	BookmarksChangedEvent struct {
		Bookmarks []models.Bookmark
	}

	// LookupRecordedEvent is emitted after a successful read is stored.
	LookupRecordedEvent struct {
		Lookup models.Lookup
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (BookmarksChangedEvent) isServiceEvent() {}
func (LookupRecordedEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()            {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	client      *api.Client
	database    *db.DB
	bookmarks   *bookmarks.Service
	exporter    *charts.PNGExporter
	location    *time.Location
	notifier    func(title, message string) error
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
	pruned      atomic.Int64
	notify      bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	m := &Manager{
		client:   api.NewClient(cfg.APIBaseURL, nil),
		exporter: charts.NewPNGExporter(cfg.ExportDir),
		location: loc,
		notify:   cfg.NotifyNewClicks,
		notifier: desktopNotify,
		stopChan: make(chan struct{}),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.bookmarks, err = bookmarks.New(cfg.BookmarksPath)
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize bookmarks: %w", err)
	}

	go m.routeEvents()

	return m, nil
}

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.bookmarks.Events():
			m.handleBookmarkEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleBookmarkEvent(event bookmarks.Event) {
	switch event.Type {
	case bookmarks.EventLoaded, bookmarks.EventChanged,
		bookmarks.EventAdded, bookmarks.EventRemoved:
		m.broadcast(BookmarksChangedEvent{Bookmarks: m.bookmarks.List()})

	case bookmarks.EventError:
		m.broadcast(ErrorEvent{Service: "bookmarks", Error: event.Error})
	}
}

// LoadAnalytics fetches a snapshot for alias. A successful read is recorded
// in the lookup history; history failures are logged and never returned.
func (m *Manager) LoadAnalytics(ctx context.Context, alias string) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := m.client.FetchAnalytics(ctx, alias)
	if err != nil {
		logger.Warn("analytics fetch failed",
			"alias", alias, "kind", api.KindOf(err).String(), "error", err)
		return nil, err
	}
	logger.Info("analytics fetched",
		"alias", alias, "total", snap.TotalClicks, "duration", time.Since(start))

	m.recordLookup(ctx, alias, snap)
	return snap, nil
}

func (m *Manager) recordLookup(ctx context.Context, alias string, snap *models.Snapshot) {
	now := time.Now()
	view := analytics.Transform(snap, now, m.location)

	previous, err := m.database.LastLookup(ctx, alias)
	if err != nil {
		logger.Error("failed to read lookup history", "alias", alias, "error", err)
	}

	lookup := models.Lookup{
		Alias:       alias,
		FetchedAt:   now,
		TotalClicks: view.TotalClicks,
		TodayCount:  view.TodayCount,
		MonthCount:  view.MonthCount,
	}
	if err := m.database.InsertLookup(ctx, &lookup); err != nil {
		logger.Error("failed to record lookup", "alias", alias, "error", err)
		return
	}
	if removed, err := m.database.PruneLookups(ctx, HistoryKeep); err != nil {
		logger.Error("failed to prune lookups", "error", err)
	} else if removed > 0 {
		m.pruned.Add(removed)
		logger.Debug("pruned lookups", "removed", removed)
	}

	m.broadcast(LookupRecordedEvent{Lookup: lookup})
	m.checkNotifications(previous, lookup)
}

// checkNotifications sends a desktop notification when a re-read shows clicks
// the previous read did not.
func (m *Manager) checkNotifications(previous *models.Lookup, current models.Lookup) {
	if !m.notify || previous == nil || current.TotalClicks <= previous.TotalClicks {
		return
	}

	gained := current.TotalClicks - previous.TotalClicks
	title := fmt.Sprintf("New clicks: %s", current.Alias)
	body := fmt.Sprintf("+%s since %s (total %s)",
		humanize.Comma(int64(gained)),
		humanize.Time(previous.FetchedAt),
		humanize.Comma(int64(current.TotalClicks)))

	if err := m.notifier(title, body); err != nil {
		logger.Warn("desktop notification failed", "alias", current.Alias, "error", err)
	}
}

// Shorten creates a short link.
func (m *Manager) Shorten(ctx context.Context, req api.CreateRequest) (*api.CreateResult, error) {
	res, err := m.client.Shorten(ctx, req)
	if err != nil {
		logger.Warn("create failed", "url", req.URL, "custom", req.Custom, "error", err)
		return nil, err
	}
	logger.Info("short link created", "alias", res.Alias)
	return res, nil
}

// ExportCharts writes PNG charts of view for alias.
func (m *Manager) ExportCharts(alias string, view models.ViewData) ([]string, error) {
	if m.exporter == nil {
		return nil, errors.New("export is not configured")
	}
	return m.exporter.Export(alias, view)
}

// ToggleBookmark saves or removes alias and reports whether it is saved.
func (m *Manager) ToggleBookmark(alias string) (bool, error) {
	return m.bookmarks.Toggle(alias)
}

// RemoveBookmark removes alias from the bookmarks.
func (m *Manager) RemoveBookmark(alias string) error {
	return m.bookmarks.Remove(alias)
}

// IsBookmarked reports whether alias is saved.
func (m *Manager) IsBookmarked(alias string) bool {
	return m.bookmarks.Has(alias)
}

// RecentLookups returns the newest lookup per alias.
func (m *Manager) RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error) {
	return m.database.RecentLookups(ctx, limit)
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. A closed
// channel yields nil.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Client returns the backend client.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Bookmarks returns the bookmarks service.
func (m *Manager) Bookmarks() *bookmarks.Service {
	return m.bookmarks
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.bookmarks.Close(); err != nil {
			errs = append(errs, err)
		}

		if m.database != nil {
			// Reclaim the space of pruned rows before closing.
			if m.pruned.Load() > 0 {
				if err := m.database.Vacuum(); err != nil {
					logger.Warn("failed to vacuum database", "error", err)
				}
			}
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
