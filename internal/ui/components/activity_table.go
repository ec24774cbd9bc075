package components

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/clickdash/internal/analytics"
	"github.com/j-veylop/clickdash/internal/models"
	"github.com/j-veylop/clickdash/internal/ui/styles"
)

// ActivityPlaceholder is shown instead of rows when there is no activity.
const ActivityPlaceholder = "No clicks recorded yet"

// Column titles of the activity table.
var ActivityHeaders = []string{"Time", "Browser", "IP"}

const (
	timeColumnWidth   = 17
	originColumnWidth = 16
	minAgentWidth     = 10
	cellPadding       = 2
)

// ActivityTable is the data behind the recent clicks table.
type ActivityTable struct {
	Placeholder string
	Headers     []string
	Rows        [][]string
}

// Empty reports whether the table shows its placeholder.
func (t ActivityTable) Empty() bool {
	return t.Placeholder != ""
}

// BuildActivityTable turns view rows into table cells.
func BuildActivityTable(rows []models.ActivityRow) ActivityTable {
	t := ActivityTable{Headers: ActivityHeaders}

	if len(rows) > analytics.RecentRowLimit {
		rows = rows[:analytics.RecentRowLimit]
	}
	if len(rows) == 0 {
		t.Placeholder = ActivityPlaceholder
		return t
	}

	t.Rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Timestamp, r.Agent, r.Origin})
	}
	return t
}

// activityColumns fits the columns into width, giving the browser column
// whatever the fixed columns leave over.
func activityColumns(width int) []table.Column {
	agent := width - timeColumnWidth - originColumnWidth - 3*cellPadding
	if agent < minAgentWidth {
		agent = minAgentWidth
	}
	return []table.Column{
		{Title: ActivityHeaders[0], Width: timeColumnWidth},
		{Title: ActivityHeaders[1], Width: agent},
		{Title: ActivityHeaders[2], Width: originColumnWidth},
	}
}

// RenderActivityTable renders t at the given width.
func RenderActivityTable(t ActivityTable, width int) string {
	columns := activityColumns(width)

	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, table.Row(r))
	}

	height := len(rows)
	if height == 0 {
		height = 1
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Cell = styles.TableCellStyle
	// Read-only table: no cursor highlight.
	s.Selected = lipgloss.NewStyle()
	tbl.SetStyles(s)

	if !t.Empty() {
		return tbl.View()
	}

	total := 0
	for _, c := range columns {
		total += c.Width + cellPadding
	}

	header := tbl.HeadersView()
	placeholder := styles.HelpStyle.
		Width(total).
		Align(lipgloss.Center).
		Render(t.Placeholder)

	return lipgloss.JoinVertical(lipgloss.Left, header, placeholder)
}
