package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DeepLinkDelay is how long the app waits before the deep-linked read.
	DeepLinkDelay = 500 * time.Millisecond

	// HistoryLimit is how many recent aliases the history tab shows.
	HistoryLimit = 50

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads history and bookmarks.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadLookupsCmd(mgr),
		loadBookmarksCmd(mgr),
	)
}

// loadLookupsCmd returns a command that loads the recent lookups.
func loadLookupsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		lookups, err := mgr.RecentLookups(context.Background(), HistoryLimit)
		return LookupsLoadedMsg{Lookups: lookups, Error: err}
	}
}

// loadBookmarksCmd returns a command that loads the bookmark list.
func loadBookmarksCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return BookmarksLoadedMsg{Bookmarks: mgr.Bookmarks().List()}
	}
}

// toggleBookmarkCmd returns a command that saves or removes a bookmark.
func toggleBookmarkCmd(mgr *services.Manager, alias string) tea.Cmd {
	return func() tea.Msg {
		saved, err := mgr.ToggleBookmark(alias)
		return ToggleBookmarkResultMsg{Alias: alias, Saved: saved, Error: err}
	}
}

// removeBookmarkCmd returns a command that removes a bookmark.
func removeBookmarkCmd(mgr *services.Manager, alias string) tea.Cmd {
	return func() tea.Msg {
		return RemoveBookmarkResultMsg{Alias: alias, Error: mgr.RemoveBookmark(alias)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// NotifySuccess returns a command that adds a success notification.
func NotifySuccess(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// NotifyError returns a command that adds an error notification.
func NotifyError(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// NotifyWarning returns a command that adds a warning notification.
func NotifyWarning(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// NotifyInfo returns a command that adds an info notification.
func NotifyInfo(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Delayed returns a command that sends msg after delay.
func Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// DeepLink returns the command that opens alias once, after DeepLinkDelay.
func DeepLink(alias string) tea.Cmd {
	if alias == "" {
		return nil
	}
	return Delayed(DeepLinkDelay, LoadAnalyticsMsg{Alias: alias})
}
