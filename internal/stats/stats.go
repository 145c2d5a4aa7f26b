// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuistream/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics are derived per-session figures.
type Metrics struct {
	// WPM is delivered words per minute of session time.
	WPM      float64
	Accuracy float64
	Judged   int
}

// SessionMetrics computes reading pace and judging accuracy for a session.
func SessionMetrics(s model.SessionAggregate) Metrics {
	m := Metrics{Judged: s.Correct + s.Wrong + s.Missed}
	if m.Judged > 0 {
		m.Accuracy = float64(s.Correct) / float64(m.Judged)
	}
	if s.DurationMs > 0 {
		minutes := float64(s.DurationMs) / 60000.0
		m.WPM = float64(s.Delivered) / minutes
	}
	return m
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWPM, totalAcc float64
	bestWPM := 0.0
	rollbacks, completed := 0, 0
	for _, s := range sessions {
		m := SessionMetrics(s)
		totalWPM += m.WPM
		totalAcc += m.Accuracy
		bestWPM = math.Max(bestWPM, m.WPM)
		rollbacks += s.Rollbacks
		if s.Completed {
			completed++
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d completed)", len(sessions), completed),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Rollbacks: %d", rollbacks),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints one row per session, oldest first.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	for _, line := range sessionLines(sessionColumns, sessions) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window sessions.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) < 2 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		m := SessionMetrics(s)
		wpms[i] = m.WPM
		accs[i] = m.Accuracy * 100
	}
	lines := []string{
		"Learning Curves",
		"WPM      " + Sparkline(MovingAverage(wpms, window)),
		"Accuracy " + Sparkline(MovingAverage(accs, window)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func outcome(s model.SessionAggregate) string {
	switch {
	case s.Completed:
		return "completed"
	case s.TimedOut:
		return "timed out"
	default:
		return "ended"
	}
}
