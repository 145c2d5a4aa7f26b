package stream

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/generator"
	"github.com/verte-zerg/tuistream/internal/judge"
	"github.com/verte-zerg/tuistream/internal/measure"
)

const frameStep = 50 * time.Millisecond

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type failingMeasurer struct{}

func (failingMeasurer) Measure(text string, _ measure.Font) (float64, error) {
	return 0, measure.ErrMeasurement
}

func canonicalRule() difficulty.Config {
	return difficulty.Config{
		Level:           difficulty.Easy,
		SpeedMultiplier: 1,
		SpawnMultiplier: 1,
		ActiveKinds:     []difficulty.Kind{difficulty.Vocab},
		Display:         difficulty.DisplayAll,
		Rule:            difficulty.Rule{Mode: difficulty.Selection, Correct: []difficulty.Kind{difficulty.Canonical}},
	}
}

func testConfig(d difficulty.Config) Config {
	cfg := DefaultConfig()
	cfg.Rate.WPM = 120
	cfg.Difficulty = d
	cfg.HorizonWidth = 20
	cfg.Lookahead = 10
	cfg.Spacing = 1
	cfg.SpawnJitter = 0
	cfg.BudgetFactor = 100
	return cfg
}

func load(t *testing.T, d difficulty.Config, recs content.Records) []*content.Fragment {
	t.Helper()
	frags, err := content.Load(recs, d, generator.NewSeeded(7))
	require.NoError(t, err)
	return frags
}

type harness struct {
	t      *testing.T
	e      *Engine
	now    time.Time
	events []Event
}

func newHarness(t *testing.T, cfg Config, frags []*content.Fragment, opts ...Option) *harness {
	t.Helper()
	opts = append([]Option{WithGenerator(generator.NewSeeded(3))}, opts...)
	e, err := New(cfg, frags, opts...)
	require.NoError(t, err)
	h := &harness{t: t, e: e, now: epoch}
	e.Subscribe(func(ev Event) { h.events = append(h.events, ev) })
	require.NoError(t, e.Start(h.now))
	return h
}

func (h *harness) frame() {
	h.now = h.now.Add(frameStep)
	h.e.Frame(h.now)
}

// until runs frames until cond holds, failing after limit frames.
func (h *harness) until(limit int, cond func() bool) {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		h.frame()
	}
	require.True(h.t, cond(), "condition not reached after %d frames", limit)
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func slotOf(f *content.Fragment, kind difficulty.Kind) int {
	return slices.Index(f.Slots, kind)
}

func words(book []content.Delivered) []string {
	out := make([]string, len(book))
	for i, d := range book {
		out[i] = d.Text
	}
	return out
}

func TestNewRejectsEmptyContent(t *testing.T) {
	_, err := New(testConfig(canonicalRule()), nil)
	require.ErrorIs(t, err, content.ErrContentUnavailable)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.HorizonWidth = 0
	_, err := New(cfg, load(t, canonicalRule(), content.Records{{Text: "a"}}))
	require.Error(t, err)
}

func TestElementsNeverOverlap(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.SpawnJitter = 0.3
	frags := load(t, canonicalRule(), content.Records{
		{Text: "the quick brown fox jumps over the lazy dog"},
		{Text: "and then it ran far away into the woods"},
		{Text: "never to be seen again by anyone at all"},
	})
	h := newHarness(t, cfg, frags)
	for i := 0; i < 2000 && !h.e.State().Terminal(); i++ {
		views := h.e.Elements()
		for j := 1; j < len(views); j++ {
			prev := views[j-1]
			require.LessOrEqual(t, prev.X+prev.Width, views[j].X+1e-9, "frame %d element %d", i, j)
		}
		if len(views) > 0 {
			last := views[len(views)-1]
			require.LessOrEqual(t, last.X, cfg.HorizonWidth+cfg.Lookahead)
		}
		h.frame()
	}
	assert.Equal(t, Complete, h.e.State())
}

func TestAutoResolvedContentNeverJudges(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two three"},
		{Text: "four five", Checkpoint: true},
		{Text: "six\n"},
	})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	h.until(1000, func() bool { return h.e.State().Terminal() })

	for _, ev := range h.events {
		if ev.Kind == EventState {
			assert.NotEqual(t, Judging, ev.State)
		}
	}
	res, ok := h.e.Result()
	require.True(t, ok)
	assert.True(t, res.Completed)
	assert.False(t, res.TimedOut)
	assert.Equal(t, judge.Score{}, res.Score)
	assert.Equal(t, []string{"one", "two", "three", "four", "five", "six"}, words(h.e.Book()))
	assert.True(t, h.e.Book()[5].EndsParagraph)
	assert.Equal(t, 6, res.Delivered)
	assert.Equal(t, 1, h.count(EventComplete))
}

func TestWrongChoiceRollsBackToStart(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two"},
		{Text: "the {cat} sat", Variants: map[string]string{"vocab": "dog"}},
		{Text: "last words"},
	})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	h.until(500, func() bool { return h.e.State() == Judging })

	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[1], difficulty.Vocab)))
	h.frame()

	assert.Equal(t, judge.Score{Wrong: 1}, h.e.Score())
	assert.Equal(t, 1, h.e.Rollbacks())
	assert.Empty(t, h.e.Book())
	assert.False(t, frags[1].IsError)
	assert.False(t, frags[1].Resolved())
	require.NotEmpty(t, h.e.Elements())
	assert.Equal(t, "one", h.e.Elements()[0].Text)
	assert.Equal(t, 1, h.count(EventRollback))
}

func TestCorrectChoiceDeliversFragment(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two"},
		{Text: "the {cat} sat", Variants: map[string]string{"vocab": "dog"}},
		{Text: "end"},
	})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	h.until(500, func() bool { return h.e.State() == Judging })

	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[1], difficulty.Canonical)))
	h.frame()
	assert.Equal(t, judge.Score{Correct: 1}, h.e.Score())
	assert.NotEqual(t, Judging, h.e.State())

	h.until(1000, func() bool { return h.e.State().Terminal() })
	assert.Equal(t, []string{"one", "two", "the", "cat", "sat", "end"}, words(h.e.Book()))
	assert.Equal(t, 0, h.e.Rollbacks())
}

func TestResolvedVariantDeliversCanonicalText(t *testing.T) {
	d := canonicalRule()
	d.Rule.Correct = []difficulty.Kind{difficulty.Vocab}
	frags := load(t, d, content.Records{{Text: "a {cat} ran", Variants: map[string]string{"vocab": "big dog"}}})
	h := newHarness(t, testConfig(d), frags)
	h.until(100, func() bool { return h.e.State() == Judging })

	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[0], difficulty.Vocab)))
	h.frame()
	assert.Equal(t, difficulty.Vocab, frags[0].Selected)
	require.NotEmpty(t, h.e.Elements())
	assert.Equal(t, "a cat ran", h.e.Elements()[0].Text)

	h.until(1000, func() bool { return h.e.State().Terminal() })
	assert.Equal(t, []string{"a", "cat", "ran"}, words(h.e.Book()))
}

func TestRollbackRestoresCheckpoint(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.HorizonWidth = 6
	cfg.Lookahead = 0
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two three four"},
		{Text: "alpha beta", Checkpoint: true},
		{Text: "x {cat} y", Variants: map[string]string{"vocab": "dog"}},
	})
	h := newHarness(t, cfg, frags)
	h.until(1000, func() bool { return h.e.State() == Judging })
	require.Equal(t, 1, h.e.points.Len())
	cp, _ := h.e.points.Latest()
	before := h.e.Book()

	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[2], difficulty.Vocab)))
	h.frame()

	assert.Equal(t, 1, h.e.Rollbacks())
	assert.Equal(t, cp.Delivered, h.e.Book())
	assert.Equal(t, before[:len(cp.Delivered)], h.e.Book())
	assert.Equal(t, cp.Score.Wrong+1, h.e.Score().Wrong)

	var rb Event
	for _, ev := range h.events {
		if ev.Kind == EventRollback {
			rb = ev
		}
	}
	assert.Equal(t, frags[1].Index, rb.Fragment)
	assert.Equal(t, judge.Wrong, rb.Outcome.Verdict)
}

func TestRepeatedRollbackConverges(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.HorizonWidth = 6
	cfg.Lookahead = 0
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two", Checkpoint: true},
		{Text: "x {cat} y", Variants: map[string]string{"vocab": "dog"}},
	})
	h := newHarness(t, cfg, frags)

	var books [][]content.Delivered
	for i := 0; i < 2; i++ {
		h.until(1000, func() bool { return h.e.State() == Judging })
		h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[1], difficulty.Vocab)))
		h.frame()
		books = append(books, h.e.Book())
	}
	assert.Equal(t, books[0], books[1])
	assert.Equal(t, 2, h.e.Rollbacks())
	assert.Equal(t, judge.Score{Wrong: 1}, h.e.Score())
	assert.Equal(t, 1, h.e.points.Len())
	assert.Equal(t, 1, h.count(EventCheckpoint))
}

// wrongThenRight answers the judged fragment wrongly n times, then correctly,
// and returns the finished result.
func wrongThenRight(t *testing.T, leadCheckpoint bool, n int) Result {
	t.Helper()
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two", Checkpoint: leadCheckpoint},
		{Text: "the {cat} sat", Variants: map[string]string{"vocab": "dog"}},
		{Text: "end"},
	})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	for i := 0; i < n; i++ {
		h.until(500, func() bool { return h.e.State() == Judging })
		h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[1], difficulty.Vocab)))
		h.frame()
	}
	h.until(500, func() bool { return h.e.State() == Judging })
	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[1], difficulty.Canonical)))
	h.until(1000, func() bool { return h.e.State().Terminal() })
	res, ok := h.e.Result()
	require.True(t, ok)
	return res
}

func TestRollbackScoreIgnoresCheckpointPlacement(t *testing.T) {
	plain := wrongThenRight(t, false, 3)
	marked := wrongThenRight(t, true, 3)

	assert.Equal(t, judge.Score{Correct: 1, Wrong: 1}, plain.Score)
	assert.Equal(t, plain.Score, marked.Score)
	assert.Equal(t, 3, plain.Rollbacks)
	assert.Equal(t, plain.Rollbacks, marked.Rollbacks)
}

func TestTimeoutMissedTriggersRollback(t *testing.T) {
	d := canonicalRule()
	d.Display = difficulty.DisplayOne
	d.Rule = difficulty.Rule{
		Mode:    difficulty.Selection,
		Correct: []difficulty.Kind{difficulty.Vocab},
		Ignore:  []difficulty.Kind{difficulty.Canonical},
	}
	frags := load(t, d, content.Records{{Text: "pop {me}", Variants: map[string]string{"vocab": "you"}}})
	frags[0].Slots = []difficulty.Kind{difficulty.Vocab}

	h := newHarness(t, testConfig(d), frags)
	h.until(1000, func() bool { return h.e.Rollbacks() > 0 })
	assert.Equal(t, 1, h.e.Score().Missed)
	assert.Empty(t, h.e.Book())
	h.e.End()
}

func TestTimeoutIgnoredKindPasses(t *testing.T) {
	d := canonicalRule()
	d.Display = difficulty.DisplayOne
	d.Rule = difficulty.Rule{
		Mode:    difficulty.Selection,
		Correct: []difficulty.Kind{difficulty.Vocab},
		Ignore:  []difficulty.Kind{difficulty.Canonical},
	}
	frags := load(t, d, content.Records{{Text: "pop {me}", Variants: map[string]string{"vocab": "you"}}})
	frags[0].Slots = []difficulty.Kind{difficulty.Canonical}

	h := newHarness(t, testConfig(d), frags)
	h.until(1000, func() bool { return h.e.State().Terminal() })
	assert.Equal(t, judge.Score{Correct: 1}, h.e.Score())
	assert.Equal(t, 0, h.e.Rollbacks())
	assert.Equal(t, []string{"pop", "me"}, words(h.e.Book()))
}

func TestMatchingActions(t *testing.T) {
	d := canonicalRule()
	d.Display = difficulty.DisplayOne
	d.Rule = difficulty.Rule{
		Mode:    difficulty.Matching,
		Actions: map[string]difficulty.Kind{"c": difficulty.Canonical, "v": difficulty.Vocab},
	}
	frags := load(t, d, content.Records{{Text: "a {b}", Variants: map[string]string{"vocab": "z"}}})
	frags[0].Slots = []difficulty.Kind{difficulty.Vocab}

	h := newHarness(t, testConfig(d), frags)
	h.until(100, func() bool { return h.e.State() == Judging })
	h.e.HandleVariantInteraction(ActionChoice("v"))
	h.frame()
	assert.Equal(t, judge.Score{Correct: 1}, h.e.Score())
	assert.Equal(t, difficulty.Vocab, frags[0].Selected)

	h.until(1000, func() bool { return h.e.State().Terminal() })
	assert.Equal(t, []string{"a", "b"}, words(h.e.Book()))
}

func TestInvalidInteractionIsIgnored(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{
		{Text: "x {cat} y", Variants: map[string]string{"vocab": "dog"}},
	})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	require.Equal(t, Judging, h.e.State())

	h.e.HandleVariantInteraction(SlotChoice(9))
	h.e.HandleVariantInteraction(SlotChoice(-1))
	h.e.HandleVariantInteraction(ActionChoice("nope"))
	h.frame()
	assert.Equal(t, judge.Score{}, h.e.Score())
	assert.Equal(t, Judging, h.e.State())
	assert.Equal(t, 0, h.e.Rollbacks())
}

func TestInteractionResolve(t *testing.T) {
	f := &content.Fragment{Slots: []difficulty.Kind{difficulty.Vocab, difficulty.Canonical}}
	rule := difficulty.Rule{Actions: map[string]difficulty.Kind{"s": difficulty.Spelling}}

	kind, err := SlotChoice(1).resolve(f, rule)
	require.NoError(t, err)
	assert.Equal(t, difficulty.Canonical, kind)

	kind, err = ActionChoice("s").resolve(f, rule)
	require.NoError(t, err)
	assert.Equal(t, difficulty.Spelling, kind)

	_, err = SlotChoice(2).resolve(f, rule)
	assert.True(t, errors.Is(err, ErrInvalidInteraction))
	_, err = ActionChoice("q").resolve(f, rule)
	assert.ErrorIs(t, err, ErrInvalidInteraction)
	assert.Equal(t, "slot:1", SlotChoice(1).String())
	assert.Equal(t, "action:s", ActionChoice("s").String())
}

func TestPauseResumeHasNoCatchUp(t *testing.T) {
	cfg := testConfig(canonicalRule())
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three four five six"}})
	h := newHarness(t, cfg, frags)
	h.frame()
	h.frame()

	x := h.e.Elements()[0].X
	remaining := h.e.Remaining()
	h.e.Pause()
	assert.True(t, h.e.Paused())

	h.now = h.now.Add(10 * time.Second)
	h.e.Frame(h.now)
	assert.Equal(t, x, h.e.Elements()[0].X)
	assert.Equal(t, remaining, h.e.Remaining())

	h.now = h.now.Add(10 * time.Second)
	h.e.Resume()
	h.e.Frame(h.now)
	assert.InDelta(t, x-h.e.Velocity()*cfg.NominalFrame.Seconds(), h.e.Elements()[0].X, 1e-9)
	assert.Equal(t, remaining-cfg.NominalFrame, h.e.Remaining())
	assert.Equal(t, 2, h.count(EventPause))
}

func TestFrameDeltaIsClamped(t *testing.T) {
	cfg := testConfig(canonicalRule())
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three"}})
	h := newHarness(t, cfg, frags)
	h.frame()

	x := h.e.Elements()[0].X
	h.now = h.now.Add(5 * time.Second)
	h.e.Frame(h.now)
	assert.InDelta(t, x-h.e.Velocity()*cfg.MaxFrameDelta.Seconds(), h.e.Elements()[0].X, 1e-9)
}

func TestRampIsBounded(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.BudgetFactor = 1
	cfg.RampPeriod = time.Second
	frags := load(t, canonicalRule(), content.Records{
		{Text: "one two three four five six seven eight nine ten"},
		{Text: "one two three four five six seven eight nine ten"},
	})
	h := newHarness(t, cfg, frags)
	base := h.e.Velocity()
	for !h.e.State().Terminal() {
		require.LessOrEqual(t, h.e.Multiplier(), 1+cfg.MaxRamp+1e-9)
		require.LessOrEqual(t, h.e.Velocity(), base*(1+cfg.MaxRamp)+1e-9)
		h.frame()
	}
	assert.Greater(t, h.e.Multiplier(), 1.0)
	assert.Less(t, h.e.SpawnInterval(), time.Duration(float64(h.e.baseInterval)*float64(time.Second)))
	pitch := h.e.baseInterval * h.e.timing.UnitsPerSecond
	assert.InDelta(t, pitch, h.e.SpawnInterval().Seconds()*h.e.Velocity(), 1e-6)
	assert.Positive(t, h.count(EventRamp))
}

func TestTimeBudgetExpiryEndsSession(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.BudgetFactor = 0.05
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three four five six seven eight"}})
	h := newHarness(t, cfg, frags)
	h.until(200, func() bool { return h.e.State().Terminal() })

	res, ok := h.e.Result()
	require.True(t, ok)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Completed)
	assert.Equal(t, Complete, h.e.State())
	assert.Equal(t, time.Duration(0), h.e.Remaining())
}

func TestTimeBroadcasts(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three four five six"}})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	for i := 0; i < 41; i++ {
		h.frame()
	}
	assert.Equal(t, 2, h.count(EventTime))
}

func TestEndStopsFrames(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three"}})
	h := newHarness(t, testConfig(canonicalRule()), frags)
	h.frame()
	h.e.End()

	x := h.e.Elements()[0].X
	h.frame()
	h.e.HandleVariantInteraction(SlotChoice(0))
	assert.Equal(t, x, h.e.Elements()[0].X)
	assert.Equal(t, Ended, h.e.State())

	res, ok := h.e.Result()
	require.True(t, ok)
	assert.False(t, res.Completed)
	assert.ErrorIs(t, h.e.Start(h.now), ErrNotStartable)
}

func TestFeedbackHoldsBeforeRollback(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.FeedbackDuration = 200 * time.Millisecond
	frags := load(t, canonicalRule(), content.Records{
		{Text: "x {cat} y", Variants: map[string]string{"vocab": "dog"}},
	})
	h := newHarness(t, cfg, frags)
	h.e.HandleVariantInteraction(SlotChoice(slotOf(frags[0], difficulty.Vocab)))
	h.frame()

	require.True(t, h.e.Elements()[0].IsError)
	assert.Equal(t, 0, h.e.Rollbacks())
	x := h.e.Elements()[0].X
	h.frame()
	assert.Equal(t, x, h.e.Elements()[0].X)

	h.until(10, func() bool { return h.e.Rollbacks() == 1 })
	assert.False(t, h.e.Elements()[0].IsError)
	assert.Equal(t, 1, h.e.Score().Wrong)
}

func TestMeasurementFailureFallsBack(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{{Text: "four five"}})
	h := newHarness(t, testConfig(canonicalRule()), frags, WithMeasurer(failingMeasurer{}))
	require.NotEmpty(t, h.e.Elements())
	assert.Equal(t, 4.0, h.e.Elements()[0].Width)
}

type script struct {
	frame int
	pick  difficulty.Kind
}

func replay(t *testing.T, seed int64) (Result, []content.Delivered) {
	t.Helper()
	d := canonicalRule()
	recs := content.Records{
		{Text: "one two", Checkpoint: true},
		{Text: "the {cat} sat", Variants: map[string]string{"vocab": "dog"}},
		{Text: "and {ran} off", Variants: map[string]string{"vocab": "fled"}, Checkpoint: true},
		{Text: "the end"},
	}
	frags, err := content.Load(recs, d, generator.NewSeeded(seed))
	require.NoError(t, err)
	cfg := testConfig(d)
	cfg.SpawnJitter = 0.25
	e, err := New(cfg, frags, WithGenerator(generator.NewSeeded(seed)))
	require.NoError(t, err)

	picks := []difficulty.Kind{difficulty.Vocab, difficulty.Canonical, difficulty.Canonical, difficulty.Canonical}
	now := epoch
	require.NoError(t, e.Start(now))
	for i := 0; i < 2000 && !e.State().Terminal(); i++ {
		if e.State() == Judging && i%7 == 0 && len(picks) > 0 {
			f := e.judging.Fragment
			e.HandleVariantInteraction(SlotChoice(slotOf(f, picks[0])))
			picks = picks[1:]
		}
		now = now.Add(frameStep)
		e.Frame(now)
	}
	res, ok := e.Result()
	require.True(t, ok)
	return res, e.Book()
}

func TestSeededReplayIsDeterministic(t *testing.T) {
	r1, b1 := replay(t, 42)
	r2, b2 := replay(t, 42)
	assert.Equal(t, r1, r2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, r1.Rollbacks)
	assert.Equal(t, 1, r1.Score.Wrong)
}

func TestRunCancelEndsSession(t *testing.T) {
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three"}})
	e, err := New(testConfig(canonicalRule()), frags)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, e, time.Millisecond, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Completed)
	assert.Equal(t, Ended, e.State())
}

func TestRunUntilTimeout(t *testing.T) {
	cfg := testConfig(canonicalRule())
	cfg.Rate.WPM = 600
	cfg.BudgetFactor = 0.05
	frags := load(t, canonicalRule(), content.Records{{Text: "one two three"}})
	e, err := New(cfg, frags)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := Run(ctx, e, 2*time.Millisecond, make(chan Interaction))
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
}
