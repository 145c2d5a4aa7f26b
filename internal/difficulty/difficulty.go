// Package difficulty defines per-session difficulty configuration.
package difficulty

import (
	"fmt"
	"slices"
	"strings"
)

// Level enumerates the difficulty presets.
type Level int

const (
	Easy Level = iota
	Moderate
	Hard
)

// Levels lists every level in ascending order.
var Levels = []Level{Easy, Moderate, Hard}

func (l Level) String() string {
	switch l {
	case Easy:
		return "easy"
	case Moderate:
		return "moderate"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy":
		return Easy, nil
	case "moderate", "medium":
		return Moderate, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown difficulty %q (expected easy, moderate or hard)", name)
}

// Kind names a variant of a fragment. Canonical is the authored text.
type Kind string

const (
	Canonical Kind = "canonical"
	Vocab     Kind = "vocab"
	Spelling  Kind = "spelling"
)

// Display controls how many options a judged fragment exposes.
type Display int

const (
	// DisplayAll shows the canonical text and every active variant in shuffled slots.
	DisplayAll Display = iota
	// DisplayOne shows a single option drawn uniformly from canonical and active variants.
	DisplayOne
)

// Mode selects how a chosen kind is judged.
type Mode int

const (
	// Selection counts the choice as correct when it is one of Rule.Correct.
	Selection Mode = iota
	// Matching counts the choice as correct when it equals the exposed kind.
	Matching
)

// Rule is the correctness rule for judged fragments.
type Rule struct {
	Mode    Mode
	Correct []Kind
	// Ignore lists exposed kinds for which an unanswered timeout is a success.
	Ignore []Kind
	// Actions maps input keys to kinds for Matching exercises.
	Actions map[string]Kind
}

// IsCorrect reports whether kind is in the correct set.
func (r Rule) IsCorrect(kind Kind) bool {
	return slices.Contains(r.Correct, kind)
}

// Ignores reports whether an unanswered fragment exposing kind is judged correct.
func (r Rule) Ignores(kind Kind) bool {
	return slices.Contains(r.Ignore, kind)
}

// Action resolves an input key to a kind.
func (r Rule) Action(key string) (Kind, bool) {
	kind, ok := r.Actions[key]
	return kind, ok
}

// Config is the immutable per-session difficulty configuration.
type Config struct {
	Level           Level
	SpeedMultiplier float64
	SpawnMultiplier float64
	ActiveKinds     []Kind
	Display         Display
	Rule            Rule
}

// Active reports whether kind is enabled for this session.
func (c Config) Active(kind Kind) bool {
	return slices.Contains(c.ActiveKinds, kind)
}

// Validate checks that the multipliers are usable.
func (c Config) Validate() error {
	if c.SpeedMultiplier <= 0 {
		return fmt.Errorf("speed multiplier must be > 0")
	}
	if c.SpawnMultiplier <= 0 {
		return fmt.Errorf("spawn multiplier must be > 0")
	}
	if c.Rule.Mode == Matching && len(c.ActiveKinds) > 0 && len(c.Rule.Actions) == 0 {
		return fmt.Errorf("matching rule needs at least one action")
	}
	return nil
}

// Table is an immutable lookup of configs keyed by level.
type Table struct {
	configs map[Level]Config
}

// NewTable builds a table from the given configs. Each config's Level is its key.
func NewTable(configs ...Config) Table {
	m := make(map[Level]Config, len(configs))
	for _, cfg := range configs {
		m[cfg.Level] = cfg
	}
	return Table{configs: m}
}

// Lookup returns the config for level.
func (t Table) Lookup(level Level) (Config, error) {
	cfg, ok := t.configs[level]
	if !ok {
		return Config{}, fmt.Errorf("no %s difficulty defined", level)
	}
	cfg.ActiveKinds = slices.Clone(cfg.ActiveKinds)
	return cfg, nil
}
