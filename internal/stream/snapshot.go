package stream

import (
	"slices"
	"time"

	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/judge"
	"github.com/verte-zerg/tuistream/internal/timing"
)

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	State      State
	Paused     bool
	Elements   []ElementView
	Book       []content.Delivered
	Score      judge.Score
	Remaining  time.Duration
	Total      time.Duration
	Multiplier float64
	Horizon    float64
}

// Snapshot captures the current session state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		State:      e.State(),
		Paused:     e.paused,
		Elements:   e.Elements(),
		Book:       e.Book(),
		Score:      e.judge.Score(),
		Remaining:  e.Remaining(),
		Total:      e.timing.TotalDuration,
		Multiplier: e.multiplier,
		Horizon:    e.cfg.HorizonWidth,
	}
}

// State returns the scheduler state. An exposed unresolved fragment reports Judging.
func (e *Engine) State() State {
	if (e.phase == Streaming || e.phase == Draining) && e.judging != nil {
		return Judging
	}
	return e.phase
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	return e.paused
}

// Elements returns views of the live elements, front first.
func (e *Engine) Elements() []ElementView {
	out := make([]ElementView, len(e.live))
	for i, el := range e.live {
		out[i] = el.view(el == e.judging)
	}
	return out
}

// Book returns a copy of the delivered log.
func (e *Engine) Book() []content.Delivered {
	return slices.Clone(e.book)
}

// Score returns the current score.
func (e *Engine) Score() judge.Score {
	return e.judge.Score()
}

// Remaining is the time left in the session budget.
func (e *Engine) Remaining() time.Duration {
	return max(e.timing.TotalDuration-e.elapsed, 0)
}

// Elapsed is the simulated session time, excluding pauses.
func (e *Engine) Elapsed() time.Duration {
	return e.elapsed
}

// Timing returns the derived timing model.
func (e *Engine) Timing() timing.Model {
	return e.timing
}

// Velocity is the current horizontal speed in units per second.
func (e *Engine) Velocity() float64 {
	return e.velocity
}

// SpawnInterval is the current nominal time between admitted words. Admission
// is distance based, so this is derived: the mean word pitch over the ramped
// velocity.
func (e *Engine) SpawnInterval() time.Duration {
	return time.Duration(e.spawnInterval * float64(time.Second))
}

// Multiplier is the current ramp multiplier.
func (e *Engine) Multiplier() float64 {
	return e.multiplier
}

// Rollbacks counts rollbacks so far.
func (e *Engine) Rollbacks() int {
	return e.rollbacks
}

// Result returns the session result once the session is over.
func (e *Engine) Result() (Result, bool) {
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}
