package stream

import (
	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
)

// ElementKind distinguishes single words from fragments awaiting judgment.
type ElementKind int

const (
	WordElement ElementKind = iota
	FragmentElement
)

// Element is a movable unit on the horizon.
type Element struct {
	Kind  ElementKind
	X     float64
	Width float64
	// Gap is the spacing kept after this element.
	Gap      float64
	Fragment *content.Fragment
	// Word is the word offset for word elements.
	Word int
	// Offsets are cumulative word offsets for fragment elements.
	Offsets []float64

	pos int
}

// ElementView is a read-only rendering snapshot of an Element.
type ElementView struct {
	Kind          ElementKind
	X             float64
	Width         float64
	Text          string
	Options       []content.Option
	Offsets       []float64
	Selected      difficulty.Kind
	IsError       bool
	Judging       bool
	FragmentIndex int
	EndsParagraph bool
}

func (e *Element) view(judging bool) ElementView {
	f := e.Fragment
	v := ElementView{
		Kind:          e.Kind,
		X:             e.X,
		Width:         e.Width,
		Selected:      f.Selected,
		IsError:       f.IsError,
		Judging:       judging,
		FragmentIndex: f.Index,
	}
	switch e.Kind {
	case WordElement:
		w := f.Words[e.Word]
		v.Text = w.Text
		v.EndsParagraph = w.EndsParagraph
	case FragmentElement:
		v.Options = f.Options()
		v.Text = f.Canonical
		if !f.Resolved() && len(v.Options) == 1 {
			v.Text = v.Options[0].Text
		}
		v.Offsets = append([]float64(nil), e.Offsets...)
	}
	return v
}

func (e *Element) right() float64 {
	return e.X + e.Width
}
