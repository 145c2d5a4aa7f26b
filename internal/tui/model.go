// Package tui provides the Bubble Tea streaming exercise interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuistream/internal/exercise"
	"github.com/verte-zerg/tuistream/internal/model"
	"github.com/verte-zerg/tuistream/internal/store"
	"github.com/verte-zerg/tuistream/internal/stream"
)

// FrameInterval is the animation tick.
const FrameInterval = time.Second / 30

type frameMsg time.Time

// Session describes what is being played, for persistence.
type Session struct {
	Config      model.Config
	ContentPath string
	ContentHash string
}

// Model implements the Bubble Tea streaming UI.
type Model struct {
	ex      exercise.Exercise
	store   *store.Store
	session Session
	now     func() time.Time

	keys     keyMap
	help     help.Model
	progress progress.Model

	width  int
	height int

	startedAt time.Time
	status    string
	saved     bool
	quitting  bool
	err       error
}

var (
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	judgingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	resolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CC47F"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	bookStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	horizonStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, false).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs the streaming TUI over an exercise. st may be nil, in
// which case results are not saved.
func NewModel(ex exercise.Exercise, st *store.Store, session Session) *Model {
	m := &Model{
		ex:       ex,
		store:    st,
		session:  session,
		now:      time.Now,
		keys:     newKeyMap(ex.Bindings()),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	ex.Subscribe(m.observe)
	return m
}

func frameTick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.startedAt = m.now()
	if err := m.ex.Start(m.startedAt); err != nil {
		m.err = err
		return tea.Quit
	}
	return frameTick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width/3, 10)
		return m, nil
	case frameMsg:
		m.ex.Frame(time.Time(msg))
		if m.finished() {
			m.persist()
			return m, nil
		}
		return m, frameTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ex.End()
		m.persist()
		m.quitting = true
		return m, tea.Quit
	case m.finished():
		if key.Matches(msg, m.keys.Close) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, m.keys.Pause):
		if m.ex.Snapshot().Paused {
			m.ex.Resume()
			return m, nil
		}
		m.ex.Pause()
		return m, nil
	}
	name := msg.String()
	if msg.Type == tea.KeySpace {
		name = " "
	}
	m.ex.Interact(name)
	return m, nil
}

func (m *Model) finished() bool {
	_, ok := m.ex.Result()
	return ok
}

func (m *Model) observe(ev stream.Event) {
	switch ev.Kind {
	case stream.EventRollback:
		m.status = fmt.Sprintf("%s: back to checkpoint", ev.Outcome.Verdict)
	case stream.EventCheckpoint:
		m.status = "checkpoint"
	case stream.EventJudged:
		if ev.Outcome.Correct() {
			m.status = "correct"
		}
	case stream.EventComplete:
		switch {
		case ev.Result.Completed:
			m.status = "complete"
		case ev.Result.TimedOut:
			m.status = "time is up"
		default:
			m.status = "ended"
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ex.Snapshot()
	width := m.width
	if width <= 0 {
		width = int(snap.Horizon)
	}
	horizon := horizonStyle.Render(renderHorizon(snap, int(snap.Horizon)))
	book := bookStyle.Width(max(width-4, 1)).Render(wrapBook(snap.Book, max(width-4, 1), bookLines(m.height)))
	parts := []string{horizon, "", book, "", m.renderFooter(snap), m.help.ShortHelpView(m.keys.ShortHelp())}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func bookLines(height int) int {
	if height <= 0 {
		return 6
	}
	return max(height-14, 2)
}

func (m *Model) renderFooter(snap stream.Snapshot) string {
	fraction := 0.0
	if snap.Total > 0 {
		fraction = float64(snap.Remaining) / float64(snap.Total)
	}
	segments := []string{
		fmt.Sprintf("%s · %s", m.ex.Name(), m.ex.Level()),
		fmt.Sprintf("Correct %d · Wrong %d · Missed %d", snap.Score.Correct, snap.Score.Wrong, snap.Score.Missed),
		fmt.Sprintf("Time %s", formatClock(snap.Remaining)),
		fmt.Sprintf("x%.2f", snap.Multiplier),
	}
	if snap.Paused {
		segments = append(segments, "paused")
	} else if m.status != "" {
		segments = append(segments, m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.progress.ViewAs(fraction),
		footerStyle.Render(strings.Join(segments, "  ")),
	)
}

func formatClock(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func (m *Model) persist() {
	if m.saved || m.store == nil {
		return
	}
	res, ok := m.ex.Result()
	if !ok {
		return
	}
	m.saved = true
	cfg := m.session.Config
	stats := model.SessionStats{
		StartedAt:   m.startedAt,
		EndedAt:     m.startedAt.Add(res.Elapsed),
		Exercise:    string(m.ex.Name()),
		Difficulty:  m.ex.Level().String(),
		WPM:         cfg.WPM,
		ContentPath: m.session.ContentPath,
		ContentHash: m.session.ContentHash,
		Correct:     res.Score.Correct,
		Wrong:       res.Score.Wrong,
		Missed:      res.Score.Missed,
		Delivered:   res.Delivered,
		Rollbacks:   res.Rollbacks,
		Multiplier:  res.Multiplier,
		DurationMs:  res.Elapsed.Milliseconds(),
		Completed:   res.Completed,
		TimedOut:    res.TimedOut,
	}
	if _, err := m.store.InsertSession(context.Background(), stats); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

// Err returns the error that stopped the UI, if any.
func (m *Model) Err() error {
	return m.err
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
