package exercise

import (
	"slices"

	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/stream"
)

// Speed reading streams plain text at easy. Harder levels show one option per
// fragment and the learner classifies it.
var speedTable = difficulty.NewTable(
	difficulty.Config{
		Level:           difficulty.Easy,
		SpeedMultiplier: 1,
		SpawnMultiplier: 1,
	},
	difficulty.Config{
		Level:           difficulty.Moderate,
		SpeedMultiplier: 1.2,
		SpawnMultiplier: 1.2,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab},
		Display:         difficulty.DisplayOne,
		Rule: difficulty.Rule{
			Mode: difficulty.Matching,
			Actions: map[string]difficulty.Kind{
				"j": difficulty.Canonical,
				"k": difficulty.Vocab,
			},
		},
	},
	difficulty.Config{
		Level:           difficulty.Hard,
		SpeedMultiplier: 1.5,
		SpawnMultiplier: 1,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab, difficulty.Spelling},
		Display:         difficulty.DisplayOne,
		Rule: difficulty.Rule{
			Mode: difficulty.Matching,
			Actions: map[string]difficulty.Kind{
				"j": difficulty.Canonical,
				"k": difficulty.Vocab,
				"l": difficulty.Spelling,
			},
		},
	},
)

type speed struct {
	session
	actions map[string]difficulty.Kind
}

func (s *speed) Interact(key string) bool {
	if _, ok := s.actions[key]; !ok {
		return false
	}
	s.HandleVariantInteraction(stream.ActionChoice(key))
	return true
}

func (s *speed) Bindings() []Binding {
	keys := make([]string, 0, len(s.actions))
	for key := range s.actions {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	out := make([]Binding, 0, len(keys))
	for _, key := range keys {
		out = append(out, Binding{Keys: []string{key}, Help: string(s.actions[key])})
	}
	return out
}
