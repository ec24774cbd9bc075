package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/clickdash/internal/api"
	"github.com/j-veylop/clickdash/internal/api/apitest"
	"github.com/j-veylop/clickdash/internal/config"
	"github.com/j-veylop/clickdash/internal/models"
)

const analyticsBody = `{
	"total_clicks": 3,
	"daily_stats": {"2024-05-01": 2, "2024-05-02": 1},
	"monthly_stats": {"2024-05": 3},
	"user_agent_stats": {"Chrome": 2, "Firefox": 1},
	"clicks": []
}`

func totalsBody(total int) string {
	return fmt.Sprintf(`{"total_clicks": %d, "daily_stats": {}, "monthly_stats": {}, "user_agent_stats": {}, "clicks": []}`, total)
}

type recordedNotification struct {
	title, message string
}

type notifierSpy struct {
	mu    sync.Mutex
	calls []recordedNotification
}

func (n *notifierSpy) notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{title, message})
	return nil
}

func (n *notifierSpy) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// waitFor reads events until match returns true.
func waitFor(t *testing.T, ch <-chan ServiceEvent, match func(ServiceEvent) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-ch:
			if match(event) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func newTestManager(t *testing.T, notify bool) (*Manager, *apitest.Server) {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		APIBaseURL:      srv.URL,
		DatabasePath:    filepath.Join(dir, "lookups.db"),
		BookmarksPath:   filepath.Join(dir, "bookmarks.json"),
		ExportDir:       filepath.Join(dir, "exports"),
		Location:        time.UTC,
		NotifyNewClicks: notify,
	}

	mgr, err := NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr, srv
}

func TestNewManager(t *testing.T) {
	mgr, srv := newTestManager(t, false)

	assert.NotNil(t, mgr.Bookmarks())
	assert.NotNil(t, mgr.Database())
	assert.Equal(t, srv.URL, mgr.Client().BaseURL())
}

func TestManager_LoadAnalyticsRecordsLookup(t *testing.T) {
	mgr, srv := newTestManager(t, false)
	srv.SetAnalytics("abc", analyticsBody)

	snap, err := mgr.LoadAnalytics(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalClicks)

	lookups, err := mgr.RecentLookups(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, lookups, 1)
	assert.Equal(t, "abc", lookups[0].Alias)
	assert.Equal(t, 3, lookups[0].TotalClicks)
}

func TestManager_LoadAnalyticsFailureNotRecorded(t *testing.T) {
	mgr, _ := newTestManager(t, false)

	_, err := mgr.LoadAnalytics(context.Background(), "missing")
	require.ErrorIs(t, err, api.ErrNotFound)

	lookups, err := mgr.RecentLookups(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, lookups)
}

func TestManager_LookupRecordedEvent(t *testing.T) {
	mgr, srv := newTestManager(t, false)
	srv.SetAnalytics("abc", analyticsBody)

	ch, _ := mgr.Subscribe()

	_, err := mgr.LoadAnalytics(context.Background(), "abc")
	require.NoError(t, err)

	waitFor(t, ch, func(event ServiceEvent) bool {
		rec, ok := event.(LookupRecordedEvent)
		if !ok {
			return false
		}
		assert.Equal(t, "abc", rec.Lookup.Alias)
		assert.NotZero(t, rec.Lookup.ID)
		return true
	})
}

func TestManager_NotifiesOnNewClicks(t *testing.T) {
	mgr, srv := newTestManager(t, true)
	spy := &notifierSpy{}
	mgr.notifier = spy.notify

	srv.SetAnalytics("abc", totalsBody(1))
	_, err := mgr.LoadAnalytics(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, spy.count(), "first read has nothing to compare against")

	_, err = mgr.LoadAnalytics(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, spy.count(), "unchanged total")

	srv.SetAnalytics("abc", totalsBody(4))
	_, err = mgr.LoadAnalytics(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 1, spy.count())
	assert.Equal(t, "New clicks: abc", spy.calls[0].title)
	assert.Contains(t, spy.calls[0].message, "+3")
}

func TestManager_NotificationsDisabled(t *testing.T) {
	mgr, srv := newTestManager(t, false)
	spy := &notifierSpy{}
	mgr.notifier = spy.notify

	srv.SetAnalytics("abc", totalsBody(1))
	_, _ = mgr.LoadAnalytics(context.Background(), "abc")
	srv.SetAnalytics("abc", totalsBody(9))
	_, _ = mgr.LoadAnalytics(context.Background(), "abc")

	assert.Equal(t, 0, spy.count())
}

func TestManager_NotifierErrorIgnored(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	mgr.notifier = func(string, string) error { return errors.New("no dbus") }

	prev := &models.Lookup{Alias: "abc", TotalClicks: 1, FetchedAt: time.Now()}
	assert.NotPanics(t, func() {
		mgr.checkNotifications(prev, models.Lookup{Alias: "abc", TotalClicks: 2})
	})
}

func TestManager_Shorten(t *testing.T) {
	mgr, _ := newTestManager(t, false)

	res, err := mgr.Shorten(context.Background(), api.CreateRequest{URL: "https://example.com", Custom: "mine"})
	require.NoError(t, err)
	assert.Equal(t, "mine", res.Alias)

	_, err = mgr.Shorten(context.Background(), api.CreateRequest{URL: "https://example.com", Custom: "mine"})
	assert.ErrorIs(t, err, api.ErrAliasTaken)
}

func TestManager_ExportCharts(t *testing.T) {
	mgr, _ := newTestManager(t, false)

	view := models.ViewData{
		TotalClicks: 2,
		Series:      models.SeriesData{Labels: []string{"2024-05-01"}, Counts: []int{2}},
		TopCategories: []models.CategoryEntry{
			{RawLabel: "Chrome", DisplayLabel: "Chrome", Count: 2},
		},
	}

	paths, err := mgr.ExportCharts("abc", view)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestManager_ToggleBookmarkBroadcasts(t *testing.T) {
	mgr, _ := newTestManager(t, false)
	ch, _ := mgr.Subscribe()

	saved, err := mgr.ToggleBookmark("abc")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, mgr.IsBookmarked("abc"))

	waitFor(t, ch, func(event ServiceEvent) bool {
		changed, ok := event.(BookmarksChangedEvent)
		return ok && len(changed.Bookmarks) == 1 && changed.Bookmarks[0].Alias == "abc"
	})

	require.NoError(t, mgr.RemoveBookmark("abc"))
	assert.False(t, mgr.IsBookmarked("abc"))
}

func TestManager_Subscription(t *testing.T) {
	mgr, _ := newTestManager(t, false)

	ch, cmd := mgr.Subscribe()
	require.NotNil(t, ch)
	require.NotNil(t, cmd)

	mgr.broadcast(ErrorEvent{Service: "test", Error: errors.New("boom")})

	// Startup may have queued a bookmarks event first.
	for msg := cmd(); ; msg = WaitForEvent(ch)() {
		if _, ok := msg.(ErrorEvent); ok {
			break
		}
	}

	mgr.Unsubscribe(ch)
	assert.Nil(t, WaitForEvent(ch)())
}

func TestManager_BroadcastOnlyReachesSubscribers(t *testing.T) {
	mgr, _ := newTestManager(t, false)

	// Nobody listens yet; these must neither block nor be replayed later.
	done := make(chan struct{})
	go func() {
		for i := range 200 {
			mgr.broadcast(ErrorEvent{Service: "early", Error: fmt.Errorf("event %d", i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked without subscribers")
	}

	ch, _ := mgr.Subscribe()
	mgr.broadcast(ErrorEvent{Service: "late", Error: errors.New("after subscribe")})

	for {
		select {
		case ev := <-ch:
			errEv, ok := ev.(ErrorEvent)
			if !ok {
				continue
			}
			assert.Equal(t, "late", errEv.Service, "events broadcast before Subscribe must not be delivered")
			return
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	mgr, _ := newTestManager(t, false)
	ch, _ := mgr.Subscribe()

	require.NoError(t, mgr.Close())
	assert.NoError(t, mgr.Close())

	_, ok := <-ch
	assert.False(t, ok)
}
