// Package analytics turns a raw snapshot into the data the dashboard draws.
package analytics

import (
	"sort"
	"time"

	"github.com/j-veylop/clickdash/internal/models"
)

const (
	// TopCategoryLimit caps the category chart.
	TopCategoryLimit = 5
	// RecentRowLimit caps the activity table.
	RecentRowLimit = 10
	// HiddenOrigin replaces a missing origin address.
	HiddenOrigin = "hidden"
	// TimestampLayout formats activity timestamps as day.month.year, hour:minute.
	TimestampLayout = "02.01.2006, 15:04"

	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// Transform derives view data from a snapshot. Bucket keys are UTC, so the
// day and month lookups use now in UTC; loc only affects row timestamps.
// A nil loc means time.Local.
func Transform(s *models.Snapshot, now time.Time, loc *time.Location) models.ViewData {
	if s == nil {
		return models.ViewData{}
	}
	if loc == nil {
		loc = time.Local
	}

	utc := now.UTC()
	today, _ := s.DailyStats.Get(utc.Format(dayKeyLayout))
	month, _ := s.MonthlyStats.Get(utc.Format(monthKeyLayout))

	return models.ViewData{
		TotalClicks:   s.TotalClicks,
		TodayCount:    today,
		MonthCount:    month,
		Series:        buildSeries(s.DailyStats),
		TopCategories: rankCategories(s.CategoryStats),
		Rows:          buildRows(s.RecentClicks, loc),
	}
}

func buildSeries(daily models.BucketMap) models.SeriesData {
	sorted := daily.SortedByKey()
	series := models.SeriesData{
		Labels: make([]string, len(sorted)),
		Counts: make([]int, len(sorted)),
	}
	for i, b := range sorted {
		series.Labels[i] = b.Key
		series.Counts[i] = b.Count
	}
	return series
}

// rankCategories keeps each raw entry's own count even when several collapse
// to one display label.
func rankCategories(stats models.BucketMap) []models.CategoryEntry {
	ranked := make([]models.Bucket, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > TopCategoryLimit {
		ranked = ranked[:TopCategoryLimit]
	}

	entries := make([]models.CategoryEntry, len(ranked))
	for i, b := range ranked {
		entries[i] = models.CategoryEntry{
			RawLabel:     b.Key,
			DisplayLabel: CategoryLabel(b.Key),
			Count:        b.Count,
		}
	}
	return entries
}

func buildRows(clicks []models.ClickEvent, loc *time.Location) []models.ActivityRow {
	if len(clicks) > RecentRowLimit {
		clicks = clicks[:RecentRowLimit]
	}

	rows := make([]models.ActivityRow, len(clicks))
	for i, c := range clicks {
		origin := HiddenOrigin
		if c.HasOrigin {
			origin = c.OriginAddress
		}
		rows[i] = models.ActivityRow{
			Timestamp: c.OccurredAt.In(loc).Format(TimestampLayout),
			Agent:     RowAgentLabel(c.UserAgent),
			Origin:    origin,
		}
	}
	return rows
}
