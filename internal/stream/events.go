package stream

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuistream/internal/judge"
)

// State is the scheduler state.
type State int

const (
	Idle State = iota
	Streaming
	Judging
	Draining
	Complete
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Judging:
		return "judging"
	case Draining:
		return "draining"
	case Complete:
		return "complete"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further frames will run.
func (s State) Terminal() bool {
	return s == Complete || s == Ended
}

// EventKind tags an Event.
type EventKind int

const (
	EventState EventKind = iota
	EventScore
	EventTime
	EventJudged
	EventRollback
	EventCheckpoint
	EventRamp
	EventPause
	EventComplete
)

// Event is published to observers after a frame's mutations are applied.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind
	State      State
	Paused     bool
	Score      judge.Score
	Remaining  time.Duration
	Outcome    judge.Outcome
	Fragment   int
	Multiplier float64
	Result     Result
}

// Observer receives events in publication order.
type Observer func(Event)

// Result summarises a finished session.
type Result struct {
	Score      judge.Score
	Elapsed    time.Duration
	Total      time.Duration
	Delivered  int
	Rollbacks  int
	Multiplier float64
	// Completed is false when the session was ended before the content ran out.
	Completed bool
	TimedOut  bool
}
