// Package judge evaluates learner choices against the active difficulty rule.
package judge

import (
	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
)

// Verdict is the counter an outcome lands in.
type Verdict int

const (
	Correct Verdict = iota
	Wrong
	Missed
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	case Missed:
		return "missed"
	default:
		return "unknown"
	}
}

// Outcome is the result of judging one fragment.
type Outcome struct {
	Verdict  Verdict
	Chosen   difficulty.Kind
	Exposed  difficulty.Kind
	Timeout  bool
	Fragment int
}

// Correct reports whether the outcome passes.
func (o Outcome) Correct() bool {
	return o.Verdict == Correct
}

// Score counts judged outcomes.
type Score struct {
	Correct int
	Wrong   int
	Missed  int
}

// Add increments the counter matching the outcome.
func (s *Score) Add(o Outcome) {
	switch o.Verdict {
	case Correct:
		s.Correct++
	case Wrong:
		s.Wrong++
	case Missed:
		s.Missed++
	}
}

// Total is the number of judged outcomes.
func (s Score) Total() int {
	return s.Correct + s.Wrong + s.Missed
}

// Accuracy is the correct share of all outcomes, or 0 when nothing was judged.
func (s Score) Accuracy() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total())
}

// Judge applies a difficulty rule and keeps the running score.
type Judge struct {
	rule  difficulty.Rule
	score Score
}

// New returns a Judge for rule.
func New(rule difficulty.Rule) *Judge {
	return &Judge{rule: rule}
}

// Rule returns the active rule.
func (j *Judge) Rule() difficulty.Rule {
	return j.rule
}

// Score returns the current score.
func (j *Judge) Score() Score {
	return j.score
}

// Restore replaces the score wholesale, used by rollback.
func (j *Judge) Restore(s Score) {
	j.score = s
}

// Count adds an outcome to the score without judging a fragment.
func (j *Judge) Count(o Outcome) {
	j.score.Add(o)
}

// Judge evaluates chosen against f. A correct choice resolves the fragment; an
// incorrect one marks it as an error and leaves it unresolved.
func (j *Judge) Judge(f *content.Fragment, chosen difficulty.Kind) Outcome {
	exposed := f.Exposed()
	var ok bool
	switch j.rule.Mode {
	case difficulty.Matching:
		ok = chosen == exposed
	default:
		ok = j.rule.IsCorrect(chosen)
	}
	o := Outcome{Chosen: chosen, Exposed: exposed, Fragment: f.Index, Verdict: Wrong}
	if ok {
		o.Verdict = Correct
		f.Selected = chosen
		f.IsError = false
	} else {
		f.IsError = true
	}
	j.score.Add(o)
	return o
}

// Timeout judges a fragment that left the horizon unanswered. It is missed
// unless the rule ignores the exposed kind.
func (j *Judge) Timeout(f *content.Fragment) Outcome {
	exposed := f.Exposed()
	o := Outcome{Exposed: exposed, Fragment: f.Index, Timeout: true, Verdict: Missed}
	if j.rule.Ignores(exposed) {
		o.Verdict = Correct
		f.Selected = exposed
		f.IsError = false
	} else {
		f.IsError = true
	}
	j.score.Add(o)
	return o
}
