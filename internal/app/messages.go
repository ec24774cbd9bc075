package app

import (
	"time"

	"github.com/j-veylop/clickdash/internal/models"
	"github.com/j-veylop/clickdash/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// LoadAnalyticsMsg asks the analytics tab to show alias. It is sent by the
// deep link and by the history tab.
type LoadAnalyticsMsg struct {
	Alias string
}

// LookupsLoadedMsg contains the recent lookup history.
type LookupsLoadedMsg struct {
	Error   error
	Lookups []models.Lookup
}

// BookmarksLoadedMsg contains the current bookmark list.
type BookmarksLoadedMsg struct {
	Bookmarks []models.Bookmark
}

// ToggleBookmarkMsg requests saving or removing a bookmark.
type ToggleBookmarkMsg struct {
	Alias string
}

// ToggleBookmarkResultMsg contains the result of a bookmark toggle.
type ToggleBookmarkResultMsg struct {
	Error error
	Alias string
	Saved bool
}

// RemoveBookmarkMsg requests removing a bookmark.
type RemoveBookmarkMsg struct {
	Alias string
}

// RemoveBookmarkResultMsg contains the result of a bookmark removal.
type RemoveBookmarkResultMsg struct {
	Error error
	Alias string
}

// ShortLinkCreatedMsg is sent after the create flow succeeds.
type ShortLinkCreatedMsg struct {
	Alias    string
	ShortURL string
}

// ExportResultMsg contains the result of a chart export.
type ExportResultMsg struct {
	Error error
	Alias string
	Paths []string
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
