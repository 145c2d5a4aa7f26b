package exercise

import (
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/stream"
)

// Bubble pop floats one option per bubble. Altered text must be popped and
// authored text left to drift off.
var bubbleTable = difficulty.NewTable(
	bubbleConfig(difficulty.Easy, 0.8, 2, difficulty.Vocab),
	bubbleConfig(difficulty.Moderate, 1, 1.6, difficulty.Vocab, difficulty.Spelling),
	bubbleConfig(difficulty.Hard, 1.3, 1.2, difficulty.Vocab, difficulty.Spelling),
)

func bubbleConfig(level difficulty.Level, speed, spawn float64, kinds ...difficulty.Kind) difficulty.Config {
	return difficulty.Config{
		Level:           level,
		SpeedMultiplier: speed,
		SpawnMultiplier: spawn,
		ActiveKinds:     kinds,
		Display:         difficulty.DisplayOne,
		Rule: difficulty.Rule{
			Mode:    difficulty.Selection,
			Correct: []difficulty.Kind{difficulty.Vocab, difficulty.Spelling},
			Ignore:  []difficulty.Kind{difficulty.Canonical},
		},
	}
}

type bubble struct {
	session
}

func (b *bubble) Interact(key string) bool {
	if key != " " && key != "space" {
		return false
	}
	b.HandleVariantInteraction(stream.SlotChoice(0))
	return true
}

func (b *bubble) Bindings() []Binding {
	return []Binding{{Keys: []string{"space"}, Help: "pop"}}
}
