package stream

import (
	"fmt"

	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
)

// Interaction is a learner choice: either a slot position of the fragment
// being judged, or an action key mapped through the difficulty rule.
type Interaction struct {
	Slot   int
	Action string
}

// SlotChoice selects the option shown at slot i.
func SlotChoice(i int) Interaction {
	return Interaction{Slot: i}
}

// ActionChoice selects the kind bound to key.
func ActionChoice(key string) Interaction {
	return Interaction{Slot: -1, Action: key}
}

func (in Interaction) String() string {
	if in.Action != "" {
		return "action:" + in.Action
	}
	return fmt.Sprintf("slot:%d", in.Slot)
}

func (in Interaction) resolve(f *content.Fragment, rule difficulty.Rule) (difficulty.Kind, error) {
	if in.Action != "" {
		kind, ok := rule.Action(in.Action)
		if !ok {
			return "", fmt.Errorf("%w: unbound action %q", ErrInvalidInteraction, in.Action)
		}
		return kind, nil
	}
	if in.Slot < 0 || in.Slot >= len(f.Slots) {
		return "", fmt.Errorf("%w: slot %d out of range", ErrInvalidInteraction, in.Slot)
	}
	return f.Slots[in.Slot], nil
}
