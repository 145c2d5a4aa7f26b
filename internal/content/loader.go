package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/generator"
)

// ErrContentUnavailable reports that no streamable content could be loaded.
var ErrContentUnavailable = errors.New("content unavailable")

var focalPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// Load builds fragments from src for the given difficulty. Records with empty
// text are skipped. Slot order is drawn from gen once per fragment.
func Load(src Source, cfg difficulty.Config, gen *generator.Generator) ([]*Fragment, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source", ErrContentUnavailable)
	}
	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentUnavailable, err)
	}
	if gen == nil {
		gen = generator.New()
	}

	fragments := make([]*Fragment, 0, len(records))
	for i, rec := range records {
		frag, ok := buildFragment(i, rec, cfg)
		if !ok {
			continue
		}
		assignSlots(frag, cfg, gen)
		fragments = append(fragments, frag)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments with text", ErrContentUnavailable)
	}
	return fragments, nil
}

func buildFragment(index int, rec Record, cfg difficulty.Config) (*Fragment, bool) {
	raw := norm.NFC.String(rec.Text)
	canonical := clean(stripMarkers(raw))
	if canonical == "" {
		return nil, false
	}

	variants := orderedmap.NewOrderedMap[difficulty.Kind, string]()
	for _, kind := range cfg.ActiveKinds {
		if kind == difficulty.Canonical {
			continue
		}
		alt, ok := rec.Variants[string(kind)]
		if !ok {
			continue
		}
		text := clean(substitute(raw, norm.NFC.String(alt)))
		if text == "" || text == canonical {
			continue
		}
		variants.Set(kind, text)
	}

	frag := &Fragment{
		Index:             index,
		Canonical:         canonical,
		Variants:          variants,
		IsCheckpoint:      rec.Checkpoint,
		HasParagraphBreak: strings.ContainsAny(raw, "\r\n"),
		Words:             Tokenize(canonical, strings.ContainsAny(raw, "\r\n")),
	}
	if !frag.Judged() {
		frag.Selected = difficulty.Canonical
	}
	return frag, true
}

func assignSlots(frag *Fragment, cfg difficulty.Config, gen *generator.Generator) {
	if !frag.Judged() {
		return
	}
	kinds := append([]difficulty.Kind{difficulty.Canonical}, frag.Variants.Keys()...)
	if cfg.Display == difficulty.DisplayOne {
		frag.Slots = []difficulty.Kind{kinds[gen.Pick(len(kinds))]}
		return
	}
	perm := gen.Permutation(len(kinds))
	frag.Slots = make([]difficulty.Kind, len(kinds))
	for i, p := range perm {
		frag.Slots[i] = kinds[p]
	}
}

// Tokenize splits text on whitespace. The last word carries the paragraph tag.
func Tokenize(text string, endsParagraph bool) []Word {
	fields := strings.Fields(text)
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{Text: f}
	}
	if endsParagraph && len(words) > 0 {
		words[len(words)-1].EndsParagraph = true
	}
	return words
}

// substitute swaps the first focal word for alt. Without a marker the
// alternate is the whole variant text.
func substitute(raw, alt string) string {
	loc := focalPattern.FindStringIndex(raw)
	if loc == nil {
		return alt
	}
	return stripMarkers(raw[:loc[0]] + alt + raw[loc[1]:])
}

func stripMarkers(s string) string {
	return focalPattern.ReplaceAllString(s, "$1")
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
