package stats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuistream/internal/model"
)

// sessionColumn is one column of the session table. Cells wider than limit
// are clipped with "..."; zero means unbounded.
type sessionColumn struct {
	title string
	right bool
	limit int
	cell  func(s model.SessionAggregate, m Metrics) string
}

var sessionColumns = []sessionColumn{
	{title: "Ended", cell: func(s model.SessionAggregate, _ Metrics) string {
		return s.EndedAt.Local().Format("2006-01-02 15:04")
	}},
	{title: "Exercise", limit: 16, cell: func(s model.SessionAggregate, _ Metrics) string { return s.Exercise }},
	{title: "Level", cell: func(s model.SessionAggregate, _ Metrics) string { return s.Difficulty }},
	{title: "WPM", right: true, cell: func(_ model.SessionAggregate, m Metrics) string {
		return fmt.Sprintf("%.1f", m.WPM)
	}},
	{title: "Accuracy", right: true, cell: func(_ model.SessionAggregate, m Metrics) string {
		return fmt.Sprintf("%.2f%%", m.Accuracy*100)
	}},
	{title: "C/W/M", right: true, cell: func(s model.SessionAggregate, _ Metrics) string {
		return fmt.Sprintf("%d/%d/%d", s.Correct, s.Wrong, s.Missed)
	}},
	{title: "Rollbacks", right: true, cell: func(s model.SessionAggregate, _ Metrics) string {
		return fmt.Sprintf("%d", s.Rollbacks)
	}},
	{title: "Result", cell: func(s model.SessionAggregate, _ Metrics) string { return outcome(s) }},
}

// sessionLines lays sessions out under cols: a header line then one line per
// session. Widths are measured in terminal cells.
func sessionLines(cols []sessionColumn, sessions []model.SessionAggregate) []string {
	cells := make([][]string, len(sessions))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for r, s := range sessions {
		m := SessionMetrics(s)
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v := c.cell(s, m)
			if c.limit > 0 {
				v = runewidth.Truncate(v, c.limit, "...")
			}
			cells[r][i] = v
			widths[i] = max(widths[i], runewidth.StringWidth(v))
		}
	}

	line := func(values func(i int) string) string {
		parts := make([]string, len(cols))
		for i, c := range cols {
			if c.right {
				parts[i] = runewidth.FillLeft(values(i), widths[i])
			} else {
				parts[i] = runewidth.FillRight(values(i), widths[i])
			}
		}
		return strings.TrimRight(strings.Join(parts, " "), " ")
	}

	lines := make([]string, 0, len(sessions)+1)
	lines = append(lines, line(func(i int) string { return cols[i].title }))
	for _, row := range cells {
		lines = append(lines, line(func(i int) string { return row[i] }))
	}
	return lines
}
