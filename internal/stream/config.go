// Package stream runs the frame-driven streaming exercise simulation.
package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/tuistream/internal/checkpoint"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/measure"
	"github.com/verte-zerg/tuistream/internal/timing"
)

var (
	// ErrNotStartable is returned by Start when the engine already ran.
	ErrNotStartable = errors.New("engine cannot start")
	// ErrInvalidInteraction marks input that references no judgeable element.
	ErrInvalidInteraction = errors.New("invalid interaction")
	// ErrRollbackInconsistency marks a rollback requested with nothing to undo.
	ErrRollbackInconsistency = errors.New("rollback inconsistency")
)

// Config controls one streaming session.
type Config struct {
	Rate       timing.Rate
	Difficulty difficulty.Config
	Font       measure.Font

	// HorizonWidth is the visible field; elements enter at its right edge.
	HorizonWidth float64
	// Lookahead is how far past the right edge elements may be queued.
	Lookahead float64
	// Spacing is the nominal gap between elements before the spawn multiplier.
	// Zero means the measured width of a space.
	Spacing float64
	// SpawnJitter varies each gap by up to this fraction.
	SpawnJitter float64

	MaxRamp         float64
	RampPeriod      time.Duration
	BudgetFactor    float64
	MaxFrameDelta   time.Duration
	NominalFrame    time.Duration
	BroadcastPeriod time.Duration
	// FeedbackDuration holds a failed fragment on screen before rolling back.
	FeedbackDuration time.Duration
	CheckpointDepth  int
}

// DefaultConfig returns a config with the stock pacing parameters.
func DefaultConfig() Config {
	return Config{
		Rate:            timing.WPMRate(200),
		Font:            measure.DefaultFont,
		HorizonWidth:    80,
		Lookahead:       20,
		SpawnJitter:     0.2,
		MaxRamp:         timing.DefaultMaxRamp,
		RampPeriod:      timing.DefaultRampPeriod,
		BudgetFactor:    timing.DefaultBudgetFactor,
		MaxFrameDelta:   100 * time.Millisecond,
		NominalFrame:    time.Second / 60,
		BroadcastPeriod: time.Second,
		CheckpointDepth: checkpoint.DefaultDepth,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Font.Size <= 0 {
		c.Font = d.Font
	}
	if c.RampPeriod <= 0 {
		c.RampPeriod = d.RampPeriod
	}
	if c.BudgetFactor <= 0 {
		c.BudgetFactor = d.BudgetFactor
	}
	if c.MaxFrameDelta <= 0 {
		c.MaxFrameDelta = d.MaxFrameDelta
	}
	if c.NominalFrame <= 0 {
		c.NominalFrame = d.NominalFrame
	}
	if c.BroadcastPeriod <= 0 {
		c.BroadcastPeriod = d.BroadcastPeriod
	}
	if c.CheckpointDepth <= 0 {
		c.CheckpointDepth = d.CheckpointDepth
	}
	return c
}

// Validate checks the config before an engine is built.
func (c Config) Validate() error {
	if err := c.Rate.Validate(); err != nil {
		return err
	}
	if err := c.Difficulty.Validate(); err != nil {
		return err
	}
	if c.HorizonWidth <= 0 {
		return fmt.Errorf("horizon width must be > 0")
	}
	if c.Lookahead < 0 {
		return fmt.Errorf("lookahead must be >= 0")
	}
	if c.SpawnJitter < 0 || c.SpawnJitter >= 1 {
		return fmt.Errorf("spawn jitter must be in [0, 1)")
	}
	if c.MaxRamp < 0 {
		return fmt.Errorf("max ramp must be >= 0")
	}
	return nil
}
