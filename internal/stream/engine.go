package stream

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/verte-zerg/tuistream/internal/checkpoint"
	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/generator"
	"github.com/verte-zerg/tuistream/internal/judge"
	"github.com/verte-zerg/tuistream/internal/measure"
	"github.com/verte-zerg/tuistream/internal/timing"
)

// Option customises an Engine.
type Option func(*Engine)

// WithMeasurer sets the text measurement capability.
func WithMeasurer(m measure.Measurer) Option {
	return func(e *Engine) { e.measurer = m }
}

// WithGenerator sets the random source used for spawn jitter.
func WithGenerator(g *generator.Generator) Option {
	return func(e *Engine) { e.gen = g }
}

// WithLogger sets the logger for absorbed runtime errors.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine is the streaming scheduler. It is single-threaded: Frame, input and
// lifecycle calls must come from one goroutine, and observers run on it.
type Engine struct {
	cfg       Config
	log       *slog.Logger
	measurer  measure.Measurer
	gen       *generator.Generator
	fragments []*content.Fragment
	judge     *judge.Judge
	points    *checkpoint.Manager
	timing    timing.Model
	ramp      timing.Ramp
	widths    map[string]float64

	phase     State
	paused    bool
	fresh     bool
	lastFrame time.Time
	elapsed   time.Duration

	baseGap       float64
	baseInterval  float64
	velocity      float64
	spawnInterval float64
	multiplier    float64

	live      []*Element
	judging   *Element
	cursor    checkpoint.Cursor
	delivered checkpoint.Cursor
	book      []content.Delivered

	inputs   []Interaction
	failure  *judge.Outcome
	holdLeft time.Duration
	tasks    []*task

	rollbacks int
	result    *Result

	observers []Observer
	pending   []Event
	lastState State
	lastScore judge.Score
}

// New initializes an engine over fragments. The fragments are shared with the
// engine for the whole session.
func New(cfg Config, fragments []*content.Fragment, opts ...Option) (*Engine, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments", content.ErrContentUnavailable)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stream config: %w", err)
	}
	e := &Engine{
		cfg:        cfg,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		measurer:   measure.Cells{},
		fragments:  fragments,
		judge:      judge.New(cfg.Difficulty.Rule),
		points:     checkpoint.NewManager(cfg.CheckpointDepth),
		widths:     map[string]float64{},
		multiplier: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gen == nil {
		e.gen = generator.New()
	}

	spacing := cfg.Spacing
	if spacing <= 0 {
		spacing = e.measureText(" ")
	}
	e.baseGap = spacing * cfg.Difficulty.SpawnMultiplier

	totalWords, totalWidth := 0, 0.0
	for _, f := range fragments {
		for _, w := range f.Words {
			totalWords++
			totalWidth += e.measureText(w.Text)
		}
	}
	unitsPerWord := totalWidth/float64(totalWords) + e.baseGap
	model, err := timing.Compute(cfg.Rate, cfg.Difficulty.SpeedMultiplier, unitsPerWord, totalWords, cfg.BudgetFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to compute timing: %w", err)
	}
	e.timing = model
	e.ramp = timing.Ramp{MaxFraction: cfg.MaxRamp, Total: model.TotalDuration}
	e.velocity = model.UnitsPerSecond
	e.baseInterval = unitsPerWord / model.UnitsPerSecond
	e.spawnInterval = e.baseInterval

	e.tasks = []*task{
		{period: cfg.RampPeriod, run: e.applyRamp},
		{period: cfg.BroadcastPeriod, run: e.broadcast},
	}
	return e, nil
}

// Subscribe registers an observer.
func (e *Engine) Subscribe(o Observer) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

// Start begins streaming. The first frame after Start uses the nominal frame time.
func (e *Engine) Start(now time.Time) error {
	if e.phase != Idle {
		return fmt.Errorf("%w: state is %s", ErrNotStartable, e.phase)
	}
	e.phase = Streaming
	e.fresh = true
	e.lastFrame = now
	e.admit()
	e.settle()
	e.flush()
	return nil
}

// Pause suspends frames and periodic tasks.
func (e *Engine) Pause() {
	if e.paused || e.phase == Idle || e.phase.Terminal() {
		return
	}
	e.paused = true
	e.emit(Event{Kind: EventPause, Paused: true, State: e.State()})
	e.flush()
}

// Resume continues after Pause without catching up the paused wall time.
func (e *Engine) Resume() {
	if !e.paused || e.phase.Terminal() {
		return
	}
	e.paused = false
	e.fresh = true
	e.emit(Event{Kind: EventPause, Paused: false, State: e.State()})
	e.flush()
}

// End stops the session. Later frames and input are ignored.
func (e *Engine) End() {
	if e.phase.Terminal() {
		return
	}
	e.phase = Ended
	e.paused = false
	e.inputs = nil
	e.finish(false, false)
	e.flush()
}

// HandleVariantInteraction queues learner input for the next frame.
func (e *Engine) HandleVariantInteraction(in Interaction) {
	if e.paused || e.phase == Idle || e.phase.Terminal() {
		e.log.Debug("ignored interaction", "reason", ErrInvalidInteraction, "state", e.State(), "paused", e.paused)
		return
	}
	e.inputs = append(e.inputs, in)
}

// Frame advances the simulation to now.
func (e *Engine) Frame(now time.Time) {
	if e.paused || e.phase == Idle || e.phase.Terminal() {
		return
	}
	dt := e.delta(now)
	e.elapsed += dt

	if e.failure != nil {
		e.holdLeft -= dt
		if e.holdLeft <= 0 {
			e.rollback()
		}
	} else {
		if e.resolveInputs() {
			e.advance(dt)
			e.retire()
		}
		if e.failure == nil {
			e.admit()
		}
	}

	e.runTasks(dt)
	if !e.phase.Terminal() && e.Remaining() <= 0 {
		e.phase = Complete
		e.finish(false, true)
	}
	e.settle()
	e.flush()
}

func (e *Engine) delta(now time.Time) time.Duration {
	var dt time.Duration
	if e.fresh {
		dt = e.cfg.NominalFrame
		e.fresh = false
	} else {
		dt = now.Sub(e.lastFrame)
	}
	e.lastFrame = now
	return min(max(dt, 0), e.cfg.MaxFrameDelta)
}

func (e *Engine) advance(dt time.Duration) {
	step := e.velocity * dt.Seconds()
	for _, el := range e.live {
		el.X -= step
	}
}

// retire delivers elements that left the horizon, front first.
func (e *Engine) retire() {
	for len(e.live) > 0 {
		el := e.live[0]
		if el.right() >= 0 {
			return
		}
		if el.Kind == FragmentElement && !el.Fragment.Resolved() {
			o := e.judge.Timeout(el.Fragment)
			e.emit(Event{Kind: EventJudged, Outcome: o, Fragment: el.Fragment.Index})
			if !o.Correct() {
				e.fail(o)
				return
			}
		}
		e.deliver(el)
		e.live = e.live[1:]
		if e.judging == el {
			e.judging = nil
		}
	}
}

// deliver appends the element's canonical words to the book. A judged variant
// is only what the learner was shown, so it never reaches the book.
func (e *Engine) deliver(el *Element) {
	f := el.Fragment
	all := f.Words
	words := all
	if el.Kind == WordElement {
		words = all[el.Word : el.Word+1]
	}
	for _, w := range words {
		e.book = append(e.book, content.Delivered{Fragment: f.Index, Text: w.Text, EndsParagraph: w.EndsParagraph})
	}
	next := checkpoint.Cursor{Fragment: el.pos, Word: el.Word + len(words)}
	if el.Kind == FragmentElement || next.Word >= len(all) {
		next = checkpoint.Cursor{Fragment: el.pos + 1}
	}
	e.delivered = next
}

// admit moves queued content onto the horizon while there is room. A new
// unresolved fragment waits while another one is being judged.
func (e *Engine) admit() {
	for e.cursor.Fragment < len(e.fragments) {
		pos := e.cursor.Fragment
		f := e.fragments[pos]
		if !f.Resolved() && e.judging != nil {
			return
		}
		var el *Element
		words := f.Words
		if f.Resolved() {
			el = &Element{Kind: WordElement, Fragment: f, Word: e.cursor.Word, pos: pos}
			el.Width = e.measureText(words[e.cursor.Word].Text)
		} else {
			el = e.fragmentElement(f, pos)
		}
		x := e.cfg.HorizonWidth
		if n := len(e.live); n > 0 {
			last := e.live[n-1]
			x = max(x, last.right()+last.Gap)
		}
		limit := e.cfg.HorizonWidth + e.cfg.Lookahead
		if x > e.cfg.HorizonWidth && x+el.Width > limit {
			return
		}
		if f.IsCheckpoint && e.cursor.Word == 0 {
			e.createCheckpoint(pos)
		}
		el.X = x
		el.Gap = e.gen.Jitter(e.baseGap, e.cfg.SpawnJitter)
		e.live = append(e.live, el)

		if el.Kind == FragmentElement {
			e.judging = el
			e.cursor = checkpoint.Cursor{Fragment: pos + 1}
			continue
		}
		e.cursor.Word++
		if e.cursor.Word >= len(words) {
			e.cursor = checkpoint.Cursor{Fragment: pos + 1}
		}
	}
}

func (e *Engine) fragmentElement(f *content.Fragment, pos int) *Element {
	el := &Element{Kind: FragmentElement, Fragment: f, pos: pos}
	for _, text := range f.Texts() {
		el.Width = max(el.Width, e.measureText(text))
	}
	space := e.measureText(" ")
	offset := 0.0
	el.Offsets = make([]float64, len(f.Words))
	for i, w := range f.Words {
		el.Offsets[i] = offset
		offset += e.measureText(w.Text) + space
	}
	return el
}

func (e *Engine) createCheckpoint(pos int) {
	f := e.fragments[pos]
	selections := map[int]difficulty.Kind{}
	for p := e.delivered.Fragment; p < pos; p++ {
		if g := e.fragments[p]; g.Judged() && g.Resolved() {
			selections[p] = g.Selected
		}
	}
	stored := e.points.Create(checkpoint.Checkpoint{
		Cursor:        e.delivered,
		Delivered:     e.book,
		Score:         e.judge.Score(),
		FragmentIndex: f.Index,
		FragmentPos:   pos,
		Selections:    selections,
	})
	if stored {
		e.emit(Event{Kind: EventCheckpoint, Fragment: f.Index})
	}
}

// resolveInputs judges queued input against the fragment being judged. It
// returns false when a failure interrupted the frame.
func (e *Engine) resolveInputs() bool {
	inputs := e.inputs
	e.inputs = nil
	for _, in := range inputs {
		if e.judging == nil {
			e.log.Debug("ignored interaction", "reason", ErrInvalidInteraction, "input", in.String())
			continue
		}
		f := e.judging.Fragment
		kind, err := in.resolve(f, e.judge.Rule())
		if err != nil {
			e.log.Debug("ignored interaction", "reason", err, "input", in.String())
			continue
		}
		o := e.judge.Judge(f, kind)
		e.emit(Event{Kind: EventJudged, Outcome: o, Fragment: f.Index})
		if !o.Correct() {
			e.fail(o)
			return false
		}
		e.judging = nil
	}
	return true
}

func (e *Engine) fail(o judge.Outcome) {
	e.failure = &o
	e.inputs = nil
	if e.cfg.FeedbackDuration > 0 {
		e.holdLeft = e.cfg.FeedbackDuration
		return
	}
	e.rollback()
}

// rollback restores the newest checkpoint and re-applies the failing outcome.
// Live elements are discarded and the queue is re-derived from the cursor.
func (e *Engine) rollback() {
	failure := e.failure
	e.failure = nil
	e.holdLeft = 0
	if failure == nil || e.phase.Terminal() {
		e.log.Debug("skipped rollback", "reason", ErrRollbackInconsistency, "state", e.State())
		return
	}

	cp := e.points.Restore()
	e.judge.Restore(cp.Score)
	e.judge.Count(*failure)
	e.book = cp.Delivered
	e.delivered = cp.Cursor
	e.cursor = cp.Cursor
	for pos := cp.Cursor.Fragment; pos < len(e.fragments); pos++ {
		f := e.fragments[pos]
		if kind, ok := cp.Selections[pos]; ok {
			f.Selected = kind
			f.IsError = false
			continue
		}
		f.Reset()
	}
	e.live = nil
	e.judging = nil
	e.inputs = nil
	e.rollbacks++
	e.emit(Event{Kind: EventRollback, Fragment: cp.FragmentIndex, Outcome: *failure})
	e.admit()
}

func (e *Engine) applyRamp() {
	m := e.ramp.Multiplier(e.elapsed)
	if m == e.multiplier {
		return
	}
	e.multiplier = m
	e.velocity, e.spawnInterval = e.ramp.Apply(e.elapsed, e.timing.UnitsPerSecond, e.baseInterval)
	e.emit(Event{Kind: EventRamp, Multiplier: m})
}

func (e *Engine) broadcast() {
	e.emit(Event{Kind: EventTime, Remaining: e.Remaining()})
}

// settle moves between streaming and draining and detects completion.
func (e *Engine) settle() {
	if e.phase != Streaming && e.phase != Draining {
		return
	}
	if e.cursor.Fragment < len(e.fragments) {
		e.phase = Streaming
		return
	}
	if len(e.live) > 0 || e.failure != nil {
		e.phase = Draining
		return
	}
	e.phase = Complete
	e.finish(true, false)
}

func (e *Engine) finish(completed, timedOut bool) {
	if e.result != nil {
		return
	}
	e.result = &Result{
		Score:      e.judge.Score(),
		Elapsed:    e.elapsed,
		Total:      e.timing.TotalDuration,
		Delivered:  len(e.book),
		Rollbacks:  e.rollbacks,
		Multiplier: e.multiplier,
		Completed:  completed,
		TimedOut:   timedOut,
	}
	for _, t := range e.tasks {
		t.acc = 0
	}
	e.emit(Event{Kind: EventComplete, Result: *e.result, Score: e.result.Score})
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

// flush publishes queued events plus state and score changes.
func (e *Engine) flush() {
	if s := e.State(); s != e.lastState {
		e.lastState = s
		e.pending = append(e.pending, Event{Kind: EventState, State: s})
	}
	if s := e.judge.Score(); s != e.lastScore {
		e.lastScore = s
		e.pending = append(e.pending, Event{Kind: EventScore, Score: s})
	}
	events := e.pending
	e.pending = nil
	for _, ev := range events {
		for _, o := range e.observers {
			o(ev)
		}
	}
}

func (e *Engine) measureText(text string) float64 {
	if w, ok := e.widths[text]; ok {
		return w
	}
	w, err := measure.WidthOr(e.measurer, text, e.cfg.Font)
	if err != nil {
		e.log.Warn("measurement failed, using estimate", "text", text, "err", err)
	}
	e.widths[text] = w
	return w
}
