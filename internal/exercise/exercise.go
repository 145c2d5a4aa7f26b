// Package exercise assembles the streaming engine into the three learner-facing
// exercises. Each exercise owns its difficulty table and key map.
package exercise

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/generator"
	"github.com/verte-zerg/tuistream/internal/measure"
	"github.com/verte-zerg/tuistream/internal/stream"
	"github.com/verte-zerg/tuistream/internal/timing"
)

// Name identifies an exercise.
type Name string

const (
	FluentReading Name = "fluent-reading"
	SpeedReading  Name = "speed-reading"
	BubblePop     Name = "bubble-pop"
)

// Names lists the available exercises.
var Names = []Name{FluentReading, SpeedReading, BubblePop}

// ParseName parses an exercise name. Short aliases are accepted.
func ParseName(value string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "fluent-reading", "fluent", "fr":
		return FluentReading, nil
	case "speed-reading", "speed", "sr":
		return SpeedReading, nil
	case "bubble-pop", "bubble", "bp":
		return BubblePop, nil
	}
	return "", fmt.Errorf("unknown exercise %q (expected fluent-reading, speed-reading or bubble-pop)", value)
}

// Binding describes one input key for help output.
type Binding struct {
	Keys []string
	Help string
}

// Exercise is the capability set a front-end drives.
type Exercise interface {
	Name() Name
	Level() difficulty.Level
	Start(now time.Time) error
	Pause()
	Resume()
	End()
	Frame(now time.Time)
	// Interact maps a key to learner input. It reports whether the key is bound.
	Interact(key string) bool
	Bindings() []Binding
	Subscribe(o stream.Observer)
	Snapshot() stream.Snapshot
	Result() (stream.Result, bool)
	// Fragments returns the loaded content.
	Fragments() []*content.Fragment
}

// Settings are the session choices shared by all exercises.
type Settings struct {
	Level difficulty.Level
	Rate  timing.Rate
	// Stream carries pacing parameters. Its Rate and Difficulty are replaced.
	Stream stream.Config
	// Seed fixes slot shuffles and spawn jitter; nil seeds from the clock.
	Seed     *int64
	Logger   *slog.Logger
	Measurer measure.Measurer
}

// Table returns the difficulty table of an exercise.
func Table(name Name) (difficulty.Table, error) {
	switch name {
	case FluentReading:
		return fluentTable, nil
	case SpeedReading:
		return speedTable, nil
	case BubblePop:
		return bubbleTable, nil
	}
	return difficulty.Table{}, fmt.Errorf("unknown exercise %q", name)
}

// New loads content from src and builds the named exercise.
func New(name Name, src content.Source, s Settings) (Exercise, error) {
	table, err := Table(name)
	if err != nil {
		return nil, err
	}
	cfg, err := table.Lookup(s.Level)
	if err != nil {
		return nil, err
	}
	gen := generator.New()
	if s.Seed != nil {
		gen = generator.NewSeeded(*s.Seed)
	}
	fragments, err := content.Load(src, cfg, gen)
	if err != nil {
		return nil, err
	}

	scfg := s.Stream
	scfg.Rate = s.Rate
	scfg.Difficulty = cfg
	opts := []stream.Option{stream.WithGenerator(gen), stream.WithLogger(s.Logger)}
	if s.Measurer != nil {
		opts = append(opts, stream.WithMeasurer(s.Measurer))
	}
	engine, err := stream.New(scfg, fragments, opts...)
	if err != nil {
		return nil, err
	}
	base := session{Engine: engine, name: name, level: s.Level, fragments: fragments}

	switch name {
	case FluentReading:
		return &fluent{session: base}, nil
	case SpeedReading:
		return &speed{session: base, actions: cfg.Rule.Actions}, nil
	default:
		return &bubble{session: base}, nil
	}
}

// session is the engine plumbing every exercise composes.
type session struct {
	*stream.Engine
	name      Name
	level     difficulty.Level
	fragments []*content.Fragment
}

func (s *session) Name() Name {
	return s.name
}

func (s *session) Level() difficulty.Level {
	return s.level
}

func (s *session) Fragments() []*content.Fragment {
	return s.fragments
}
