// Package timing converts reading rates into horizon velocity and session budgets.
package timing

import (
	"fmt"
	"math"
	"time"
)

const (
	// MinDialWPM and MaxDialWPM bound the 0-100 speed dial.
	MinDialWPM = 60.0
	MaxDialWPM = 600.0
	// DefaultBudgetFactor gives learners slack beyond the optimal pace.
	DefaultBudgetFactor = 2.0
)

// Rate is a nominal reading rate, either in words per minute or as a 0-100 dial.
type Rate struct {
	WPM  float64
	Dial float64
	// UseDial selects the dial over WPM.
	UseDial bool
}

// WPMRate returns a words-per-minute rate.
func WPMRate(wpm float64) Rate {
	return Rate{WPM: wpm}
}

// DialRate returns a dial rate.
func DialRate(dial float64) Rate {
	return Rate{Dial: dial, UseDial: true}
}

// WordsPerMinute resolves the rate. The dial maps linearly onto
// [MinDialWPM, MaxDialWPM] and is clamped to [0, 100].
func (r Rate) WordsPerMinute() float64 {
	if !r.UseDial {
		return r.WPM
	}
	dial := min(max(r.Dial, 0), 100)
	return MinDialWPM + dial/100*(MaxDialWPM-MinDialWPM)
}

// Validate checks that the rate resolves to a positive pace.
func (r Rate) Validate() error {
	if r.UseDial {
		if r.Dial < 0 || r.Dial > 100 {
			return fmt.Errorf("dial must be between 0 and 100")
		}
		return nil
	}
	if r.WPM <= 0 {
		return fmt.Errorf("wpm must be > 0")
	}
	return nil
}

// Model holds the derived timing of a session.
type Model struct {
	// UnitsPerSecond is the base horizontal velocity before ramping.
	UnitsPerSecond float64
	// TotalDuration is the session timer budget.
	TotalDuration time.Duration
	// EffectiveWPM is the nominal rate scaled by difficulty.
	EffectiveWPM float64
}

// Compute derives velocity and budget. unitsPerWord is the mean horizon
// advance of one word including its trailing gap; totalWords is the content
// length; speedMultiplier comes from the difficulty config.
func Compute(rate Rate, speedMultiplier, unitsPerWord float64, totalWords int, budgetFactor float64) (Model, error) {
	if err := rate.Validate(); err != nil {
		return Model{}, err
	}
	if speedMultiplier <= 0 {
		return Model{}, fmt.Errorf("speed multiplier must be > 0")
	}
	if unitsPerWord <= 0 {
		return Model{}, fmt.Errorf("units per word must be > 0")
	}
	if budgetFactor <= 0 {
		budgetFactor = DefaultBudgetFactor
	}
	nominal := rate.WordsPerMinute()
	effective := nominal * speedMultiplier
	seconds := float64(totalWords) / nominal * 60 * budgetFactor
	return Model{
		UnitsPerSecond: effective / 60 * unitsPerWord,
		TotalDuration:  time.Duration(math.Round(seconds * float64(time.Second))),
		EffectiveWPM:   effective,
	}, nil
}
