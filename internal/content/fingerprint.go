package content

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Fingerprint identifies a loaded content set independent of slot shuffles.
func Fingerprint(fragments []*Fragment) string {
	var b strings.Builder
	for _, f := range fragments {
		fmt.Fprintf(&b, "%d\x1f", f.Index)
		for _, text := range f.Texts() {
			b.WriteString(text)
			b.WriteByte('\x1f')
		}
		b.WriteByte('\x1e')
	}
	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}

// Summary counts what a content set contains.
type Summary struct {
	Fragments   int
	Judged      int
	Checkpoints int
	Words       int
	Paragraphs  int
}

// Summarize counts fragments, judged fragments, checkpoints and words.
func Summarize(fragments []*Fragment) Summary {
	var s Summary
	for _, f := range fragments {
		s.Fragments++
		s.Words += len(f.Words)
		if f.Judged() {
			s.Judged++
		}
		if f.IsCheckpoint {
			s.Checkpoints++
		}
		if f.HasParagraphBreak {
			s.Paragraphs++
		}
	}
	return s
}
