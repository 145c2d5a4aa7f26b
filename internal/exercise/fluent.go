package exercise

import (
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/stream"
)

// Fluent reading shows every option of a fragment side by side; the learner
// picks the authored one by slot.
var fluentTable = difficulty.NewTable(
	difficulty.Config{
		Level:           difficulty.Easy,
		SpeedMultiplier: 0.8,
		SpawnMultiplier: 1.5,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab},
		Display:         difficulty.DisplayAll,
		Rule:            difficulty.Rule{Mode: difficulty.Selection, Correct: []difficulty.Kind{difficulty.Canonical}},
	},
	difficulty.Config{
		Level:           difficulty.Moderate,
		SpeedMultiplier: 1,
		SpawnMultiplier: 1.2,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab, difficulty.Spelling},
		Display:         difficulty.DisplayAll,
		Rule:            difficulty.Rule{Mode: difficulty.Selection, Correct: []difficulty.Kind{difficulty.Canonical}},
	},
	difficulty.Config{
		Level:           difficulty.Hard,
		SpeedMultiplier: 1.25,
		SpawnMultiplier: 1,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab, difficulty.Spelling},
		Display:         difficulty.DisplayAll,
		Rule:            difficulty.Rule{Mode: difficulty.Selection, Correct: []difficulty.Kind{difficulty.Canonical}},
	},
)

var fluentKeys = map[string]int{"1": 0, "2": 1, "3": 2}

type fluent struct {
	session
}

func (f *fluent) Interact(key string) bool {
	slot, ok := fluentKeys[key]
	if !ok {
		return false
	}
	f.HandleVariantInteraction(stream.SlotChoice(slot))
	return true
}

func (f *fluent) Bindings() []Binding {
	return []Binding{{Keys: []string{"1", "2", "3"}, Help: "pick option"}}
}
