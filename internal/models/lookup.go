package models

import "time"

// Lookup is a recorded successful analytics read.
type Lookup struct {
	FetchedAt   time.Time
	Alias       string
	ID          int64
	TotalClicks int
	TodayCount  int
	MonthCount  int
}

// Bookmark is a saved alias.
type Bookmark struct {
	AddedAt time.Time `json:"addedAt"`
	Alias   string    `json:"alias"`
	Label   string    `json:"label,omitempty"`
}

// DisplayName returns the label, falling back to the alias.
func (b Bookmark) DisplayName() string {
	if b.Label != "" {
		return b.Label
	}
	return b.Alias
}
