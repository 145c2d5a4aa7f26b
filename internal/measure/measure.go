// Package measure sizes text on the streaming horizon.
package measure

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ErrMeasurement reports that a text could not be measured.
var ErrMeasurement = errors.New("measurement failure")

// Font describes how text is drawn. Size scales one terminal cell.
type Font struct {
	Family string
	Size   float64
}

// DefaultFont is one horizon unit per terminal cell.
var DefaultFont = Font{Family: "monospace", Size: 1}

// Measurer returns the horizontal extent of text. Results must be deterministic
// for the same inputs within a session.
type Measurer interface {
	Measure(text string, font Font) (float64, error)
}

// Cells measures text in terminal cells using East Asian width rules.
type Cells struct{}

// Measure implements Measurer.
func (Cells) Measure(text string, font Font) (float64, error) {
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("%w: invalid utf-8 in %q", ErrMeasurement, text)
	}
	size := font.Size
	if size <= 0 {
		size = 1
	}
	return float64(runewidth.StringWidth(text)) * size, nil
}

// Estimate is the fallback width used when measurement fails.
func Estimate(text string, font Font) float64 {
	size := font.Size
	if size <= 0 {
		size = 1
	}
	return float64(utf8.RuneCountInString(text)) * size
}

// WidthOr measures text and falls back to Estimate on failure. The error is
// returned so callers can log it.
func WidthOr(m Measurer, text string, font Font) (float64, error) {
	if m == nil {
		return Estimate(text, font), nil
	}
	w, err := m.Measure(text, font)
	if err != nil || w < 0 {
		if err == nil {
			err = fmt.Errorf("%w: negative width for %q", ErrMeasurement, text)
		}
		return Estimate(text, font), err
	}
	return w, nil
}
