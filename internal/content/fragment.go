package content

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/verte-zerg/tuistream/internal/difficulty"
)

// Word is one whitespace-delimited token of a fragment's canonical text.
type Word struct {
	Text          string
	EndsParagraph bool
}

// Option is one selectable rendering of a fragment.
type Option struct {
	Kind difficulty.Kind
	Text string
}

// Fragment is a unit of streamed content. Canonical and variant texts are
// immutable after loading; Selected and IsError are written during judging and
// cleared again by rollback.
type Fragment struct {
	Index             int
	Canonical         string
	Variants          *orderedmap.OrderedMap[difficulty.Kind, string]
	IsCheckpoint      bool
	HasParagraphBreak bool
	Words             []Word
	// Slots is the presentation order of options, fixed once at load time.
	Slots []difficulty.Kind

	Selected difficulty.Kind
	IsError  bool
}

// Judged reports whether the fragment needs a learner decision.
func (f *Fragment) Judged() bool {
	return f.Variants != nil && f.Variants.Len() > 0
}

// Resolved reports whether a variant has been selected.
func (f *Fragment) Resolved() bool {
	return f.Selected != ""
}

// Text returns the text for kind, falling back to canonical.
func (f *Fragment) Text(kind difficulty.Kind) string {
	if kind == difficulty.Canonical || f.Variants == nil {
		return f.Canonical
	}
	if text, ok := f.Variants.Get(kind); ok {
		return text
	}
	return f.Canonical
}

// Exposed is the kind a single-option fragment shows. Multi-slot fragments
// expose the whole set, so their judged kind is canonical.
func (f *Fragment) Exposed() difficulty.Kind {
	if len(f.Slots) == 1 {
		return f.Slots[0]
	}
	return difficulty.Canonical
}

// Options returns the options in slot order.
func (f *Fragment) Options() []Option {
	out := make([]Option, 0, len(f.Slots))
	for _, kind := range f.Slots {
		out = append(out, Option{Kind: kind, Text: f.Text(kind)})
	}
	return out
}

// Texts returns canonical plus every variant text, used for sizing.
func (f *Fragment) Texts() []string {
	out := []string{f.Canonical}
	if f.Variants == nil {
		return out
	}
	for _, kind := range f.Variants.Keys() {
		text, _ := f.Variants.Get(kind)
		out = append(out, text)
	}
	return out
}

// Reset clears judging state. Fragments without variants stay resolved.
func (f *Fragment) Reset() {
	f.IsError = false
	if f.Judged() {
		f.Selected = ""
		return
	}
	f.Selected = difficulty.Canonical
}

// Delivered is one word appended to the book once it leaves the horizon.
type Delivered struct {
	Fragment      int
	Text          string
	EndsParagraph bool
}
