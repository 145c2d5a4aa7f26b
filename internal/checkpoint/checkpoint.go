// Package checkpoint keeps a bounded history of restorable session snapshots.
package checkpoint

import (
	"maps"
	"slices"

	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/judge"
)

// DefaultDepth is the number of checkpoints retained.
const DefaultDepth = 3

// Cursor addresses the first undelivered word: a position in the fragment
// slice and a word offset within that fragment.
type Cursor struct {
	Fragment int
	Word     int
}

// Checkpoint is an immutable snapshot taken before a checkpoint fragment is
// exposed to judging.
type Checkpoint struct {
	Cursor    Cursor
	Delivered []content.Delivered
	Score     judge.Score
	// FragmentIndex is the content index of the checkpoint fragment.
	FragmentIndex int
	// FragmentPos is the checkpoint fragment's position in the fragment slice.
	FragmentPos int
	// Selections holds the resolved kinds of fragments between Cursor and
	// FragmentPos, keyed by position.
	Selections map[int]difficulty.Kind
}

func (c Checkpoint) clone() Checkpoint {
	c.Delivered = slices.Clone(c.Delivered)
	c.Selections = maps.Clone(c.Selections)
	return c
}

// Manager owns the checkpoint history.
type Manager struct {
	depth   int
	history []Checkpoint
}

// NewManager returns a Manager keeping at most depth checkpoints.
func NewManager(depth int) *Manager {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Manager{depth: depth}
}

// Create records cp and reports whether it was stored. Re-creating the newest
// checkpoint's fragment keeps the snapshot taken first, so scores counted
// after it never leak into later restores. The oldest entry is dropped past
// depth.
func (m *Manager) Create(cp Checkpoint) bool {
	if n := len(m.history); n > 0 && m.history[n-1].FragmentIndex == cp.FragmentIndex {
		return false
	}
	m.history = append(m.history, cp.clone())
	if len(m.history) > m.depth {
		m.history = slices.Delete(m.history, 0, len(m.history)-m.depth)
	}
	return true
}

// Latest returns the newest checkpoint.
func (m *Manager) Latest() (Checkpoint, bool) {
	if len(m.history) == 0 {
		return Checkpoint{}, false
	}
	return m.history[len(m.history)-1].clone(), true
}

// Restore returns the state to roll back to: the newest checkpoint, or the
// beginning of the content when none exists. It does not consume history, so
// repeated calls yield the same snapshot.
func (m *Manager) Restore() Checkpoint {
	if cp, ok := m.Latest(); ok {
		return cp
	}
	return Checkpoint{FragmentIndex: -1}
}

// Len is the number of retained checkpoints.
func (m *Manager) Len() int {
	return len(m.history)
}

// History returns a copy of the retained checkpoints, oldest first.
func (m *Manager) History() []Checkpoint {
	out := make([]Checkpoint, len(m.history))
	for i, cp := range m.history {
		out[i] = cp.clone()
	}
	return out
}

// Reset drops every checkpoint.
func (m *Manager) Reset() {
	m.history = nil
}
