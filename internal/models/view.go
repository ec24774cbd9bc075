package models

// SeriesData is the daily click series as parallel label and count slices.
type SeriesData struct {
	Labels []string
	Counts []int
}

// Len returns the number of points in the series.
func (s SeriesData) Len() int {
	return len(s.Labels)
}

// Floats returns the counts as float64 for chart libraries.
func (s SeriesData) Floats() []float64 {
	out := make([]float64, len(s.Counts))
	for i, c := range s.Counts {
		out[i] = float64(c)
	}
	return out
}

// CategoryEntry is one ranked user-agent bucket.
type CategoryEntry struct {
	RawLabel     string
	DisplayLabel string
	Count        int
}

// ActivityRow is a formatted row of the recent activity table.
type ActivityRow struct {
	Timestamp string
	Agent     string
	Origin    string
}

// ViewData is everything the analytics view renders for one snapshot.
type ViewData struct {
	TotalClicks   int
	TodayCount    int
	MonthCount    int
	Series        SeriesData
	TopCategories []CategoryEntry
	Rows          []ActivityRow
}

// HasActivity reports whether there are rows for the activity table.
func (v ViewData) HasActivity() bool {
	return len(v.Rows) > 0
}
