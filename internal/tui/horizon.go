package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuistream/internal/stream"
)

type segment struct {
	x     float64
	text  string
	style lipgloss.Style
}

// renderHorizon draws live elements on a fixed-width field. The first row is
// the stream; further rows list the options of a fragment under judgment.
func renderHorizon(snap stream.Snapshot, width int) string {
	width = max(width, 1)
	rows := [][]segment{nil}
	for _, el := range snap.Elements {
		rows[0] = append(rows[0], segment{x: el.X, text: el.Text, style: elementStyle(el)})
		if !el.Judging || len(el.Options) < 2 {
			continue
		}
		for i, opt := range el.Options {
			for len(rows) <= i+1 {
				rows = append(rows, nil)
			}
			rows[i+1] = append(rows[i+1], segment{x: el.X, text: fmt.Sprintf("%d %s", i+1, opt.Text), style: optionStyle})
		}
	}
	lines := make([]string, len(rows))
	for i, segs := range rows {
		lines[i] = renderRow(segs, width)
	}
	return strings.Join(lines, "\n")
}

func elementStyle(el stream.ElementView) lipgloss.Style {
	switch {
	case el.IsError:
		return errorStyle
	case el.Judging:
		return judgingStyle
	case el.Kind == stream.FragmentElement && el.Selected != "":
		return resolvedStyle
	default:
		return wordStyle
	}
}

// renderRow places segments at their rounded positions, clipping at both
// edges. Segments must not overlap.
func renderRow(segs []segment, width int) string {
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].x < segs[j].x })
	var b strings.Builder
	col := 0
	for _, seg := range segs {
		start := int(math.Round(seg.x))
		text := seg.text
		if start < 0 {
			text = runewidth.TruncateLeft(text, -start, "")
			start = 0
		}
		start = max(start, col)
		if start >= width || text == "" {
			continue
		}
		text = runewidth.Truncate(text, width-start, "")
		b.WriteString(strings.Repeat(" ", start-col))
		b.WriteString(seg.style.Render(text))
		col = start + runewidth.StringWidth(text)
	}
	b.WriteString(strings.Repeat(" ", max(width-col, 0)))
	return b.String()
}
