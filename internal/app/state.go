// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/clickdash/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loadable resources.
const (
	ResourceAnalytics = "analytics"
	ResourceShorten   = "shorten"
	ResourceHistory   = "history"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Analytics bool
	Shorten   bool
	History   bool
}

// State is shared by the root model and every tab.
type State struct {
	mu sync.RWMutex

	LastUpdated  time.Time
	CurrentAlias string
	Bookmarks    []models.Bookmark
	Lookups      []models.Lookup

	Loading LoadingState

	notifications []Notification
}

// NewState creates empty shared state.
func NewState() *State {
	return &State{
		Bookmarks:     make([]models.Bookmark, 0),
		Lookups:       make([]models.Lookup, 0),
		notifications: make([]Notification, 0),
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceAnalytics:
		s.Loading.Analytics = loading
	case ResourceShorten:
		s.Loading.Shorten = loading
	case ResourceHistory:
		s.Loading.History = loading
	}
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceAnalytics:
		return s.Loading.Analytics
	case ResourceShorten:
		return s.Loading.Shorten
	case ResourceHistory:
		return s.Loading.History
	}
	return false
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Analytics ||
		s.Loading.Shorten ||
		s.Loading.History
}

// SetCurrentAlias records the alias shown on the analytics tab.
func (s *State) SetCurrentAlias(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentAlias = alias
}

// GetCurrentAlias returns the alias shown on the analytics tab.
func (s *State) GetCurrentAlias() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentAlias
}

// MarkUpdated stamps a successful read.
func (s *State) MarkUpdated(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastUpdated = at
}

// SetBookmarks replaces the bookmark list.
func (s *State) SetBookmarks(bookmarks []models.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bookmarks = slices.Clone(bookmarks)
}

// GetBookmarks returns a copy of the bookmark list.
func (s *State) GetBookmarks() []models.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Bookmarks)
}

// IsBookmarked reports whether alias is in the bookmark list.
func (s *State) IsBookmarked(alias string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.Bookmarks, func(b models.Bookmark) bool {
		return b.Alias == alias
	})
}

// SetLookups replaces the recent lookups.
func (s *State) SetLookups(lookups []models.Lookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups = slices.Clone(lookups)
}

// GetLookups returns a copy of the recent lookups, newest first.
func (s *State) GetLookups() []models.Lookup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Lookups)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the time of the last successful read.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
