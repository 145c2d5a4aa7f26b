package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuistream/internal/content"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
	isBreak bool
}

// buildBookRunes lays out delivered words separated by spaces, with a hard
// break after each paragraph.
func buildBookRunes(book []content.Delivered) []styledRune {
	out := make([]styledRune, 0, len(book)*6)
	for i, d := range book {
		for _, r := range d.Text {
			out = append(out, styledRune{s: string(r), width: runewidth.RuneWidth(r)})
		}
		if d.EndsParagraph {
			out = append(out, styledRune{isBreak: true})
			continue
		}
		if i < len(book)-1 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
	}
	return out
}

// wrapBook wraps the delivered log to width and keeps the last maxLines lines.
func wrapBook(book []content.Delivered, width, maxLines int) string {
	wrapped := wrapStyledRunes(buildBookRunes(book), width)
	if maxLines <= 0 {
		return wrapped
	}
	lines := strings.Split(wrapped, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isBreak {
			out.WriteString(renderStyledRunes(line))
			out.WriteString("\n\n")
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
