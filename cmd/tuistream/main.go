// Package main provides the CLI entrypoint for tuistream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/tuistream/internal/config"
	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/difficulty"
	"github.com/verte-zerg/tuistream/internal/exercise"
	"github.com/verte-zerg/tuistream/internal/metrics"
	"github.com/verte-zerg/tuistream/internal/model"
	"github.com/verte-zerg/tuistream/internal/stats"
	"github.com/verte-zerg/tuistream/internal/statsui"
	"github.com/verte-zerg/tuistream/internal/store"
	"github.com/verte-zerg/tuistream/internal/stream"
	"github.com/verte-zerg/tuistream/internal/timing"
	"github.com/verte-zerg/tuistream/internal/tui"
)

const (
	defaultExercise     = "fluent-reading"
	defaultDifficulty   = "easy"
	defaultWPM          = 200.0
	defaultLookahead    = 20.0
	defaultFeedback     = 600 * time.Millisecond
	defaultCurveWindow  = 5
	defaultHorizonWidth = 80
)

var (
	runExercise     string
	runDifficulty   string
	runWPM          float64
	runDial         float64
	runContent      string
	runMaxRamp      float64
	runRampPeriod   time.Duration
	runBudgetFactor float64
	runLookahead    float64
	runFeedback     time.Duration
	runSeed         int64
	runMetricsAddr  string

	statsExercise    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuistream",
		Short:         "Streaming text reading trainer",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}
	rootCmd.Flags().StringVarP(&runExercise, "exercise", "e", defaultExercise, "exercise: fluent-reading, speed-reading or bubble-pop")
	rootCmd.Flags().StringVarP(&runDifficulty, "difficulty", "d", defaultDifficulty, "difficulty: easy, moderate or hard")
	rootCmd.Flags().Float64Var(&runWPM, "wpm", defaultWPM, "reading rate in words per minute")
	rootCmd.Flags().Float64Var(&runDial, "dial", 0, "reading rate as a 0-100 dial (overrides --wpm)")
	rootCmd.Flags().StringVarP(&runContent, "content", "c", "", "story file (.yaml or .txt); may also be given as an argument")
	rootCmd.Flags().Float64Var(&runMaxRamp, "max-ramp", timing.DefaultMaxRamp, "largest fractional speed-up over a session")
	rootCmd.Flags().DurationVar(&runRampPeriod, "ramp-period", timing.DefaultRampPeriod, "how often the pace ramps")
	rootCmd.Flags().Float64Var(&runBudgetFactor, "budget-factor", timing.DefaultBudgetFactor, "session time budget relative to the nominal pace")
	rootCmd.Flags().Float64Var(&runLookahead, "lookahead", defaultLookahead, "cells queued beyond the right edge")
	rootCmd.Flags().DurationVar(&runFeedback, "feedback", defaultFeedback, "how long a mistake stays visible before rollback")
	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed for reproducible sessions")
	rootCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newContentCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, args []string) error {
	envCfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	logger := newLogger(envCfg.LogLevel, os.Stderr)

	fileCfg, err := config.LoadConfig(envCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ex := fileCfg.Exercise
	applyStringConfig(cmd, "exercise", &runExercise, ex.Kind)
	applyStringConfig(cmd, "difficulty", &runDifficulty, ex.Difficulty)
	applyFloatConfig(cmd, "wpm", &runWPM, ex.WPM)
	applyFloatConfig(cmd, "dial", &runDial, ex.Dial)
	applyStringConfig(cmd, "content", &runContent, ex.Content)
	applyFloatConfig(cmd, "max-ramp", &runMaxRamp, ex.MaxRamp)
	applyFloatConfig(cmd, "budget-factor", &runBudgetFactor, ex.BudgetFactor)
	applyFloatConfig(cmd, "lookahead", &runLookahead, ex.Lookahead)
	applyInt64Config(cmd, "seed", &runSeed, ex.Seed)
	if err := applyDurationConfig(cmd, "ramp-period", &runRampPeriod, ex.RampPeriod); err != nil {
		return err
	}
	if err := applyDurationConfig(cmd, "feedback", &runFeedback, ex.Feedback); err != nil {
		return err
	}
	if len(args) == 1 {
		runContent = args[0]
	}

	cfg := model.Config{
		Exercise:     runExercise,
		Difficulty:   runDifficulty,
		WPM:          runWPM,
		Content:      runContent,
		MaxRamp:      runMaxRamp,
		RampPeriod:   runRampPeriod,
		BudgetFactor: runBudgetFactor,
		Lookahead:    runLookahead,
		Feedback:     runFeedback,
	}
	if cmd.Flags().Changed("dial") || ex.Dial != nil {
		dial := runDial
		cfg.Dial = &dial
	}
	if cmd.Flags().Changed("seed") || ex.Seed != nil {
		seed := runSeed
		cfg.Seed = &seed
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	name, err := exercise.ParseName(cfg.Exercise)
	if err != nil {
		return err
	}
	level, err := difficulty.ParseLevel(cfg.Difficulty)
	if err != nil {
		return err
	}
	contentPath := config.ResolveContent(cfg.Content, envCfg.ContentDir, fileExists)
	if !fileExists(contentPath) {
		return contentLoadError(contentPath, envCfg.ContentDir, os.ErrNotExist)
	}
	src := content.SourceFor(contentPath)

	sess, err := exercise.New(name, src, exercise.Settings{
		Level:  level,
		Rate:   rateFor(cfg),
		Stream: streamConfig(cfg),
		Seed:   cfg.Seed,
		Logger: logger,
	})
	if err != nil {
		if errors.Is(err, content.ErrContentUnavailable) {
			return contentLoadError(contentPath, envCfg.ContentDir, err)
		}
		return fmt.Errorf("failed to build exercise: %w", err)
	}
	logger.Info("session ready", "exercise", name, "difficulty", level, "content", contentPath)

	st, err := store.Open(envCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ui := tui.NewModel(sess, st, tui.Session{
		Config:      cfg,
		ContentPath: contentPath,
		ContentHash: content.Fingerprint(sess.Fragments()),
	})
	return runWithMetrics(cmd.Context(), logger, sess, ui)
}

// runWithMetrics runs the TUI and, when requested, a metrics server that is
// shut down once the TUI exits.
func runWithMetrics(ctx context.Context, logger *slog.Logger, sess exercise.Exercise, ui *tui.Model) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	if runMetricsAddr != "" {
		m := metrics.New()
		sess.Subscribe(m.Observe)
		ln, err := net.Listen("tcp", runMetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", runMetricsAddr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		logger.Info("serving metrics", "addr", ln.Addr().String())

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(done)
		program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		if err := ui.Err(); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func rateFor(cfg model.Config) timing.Rate {
	if cfg.Dial != nil {
		return timing.DialRate(*cfg.Dial)
	}
	return timing.WPMRate(cfg.WPM)
}

func streamConfig(cfg model.Config) stream.Config {
	sc := stream.DefaultConfig()
	sc.HorizonWidth = float64(horizonWidth())
	sc.Lookahead = cfg.Lookahead
	sc.MaxRamp = cfg.MaxRamp
	sc.RampPeriod = cfg.RampPeriod
	sc.BudgetFactor = cfg.BudgetFactor
	sc.FeedbackDuration = cfg.Feedback
	sc.BroadcastPeriod = time.Second
	return sc
}

func horizonWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 8 {
		return defaultHorizonWidth
	}
	return width - 4
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	envCfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	path := envCfg.ConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsExercise, "exercise", "", "exercise filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsExercise != "" {
		name, err := exercise.ParseName(statsExercise)
		if err != nil {
			return err
		}
		statsExercise = string(name)
	}

	cfg := model.StatsConfig{
		Exercise: statsExercise,
		Since:    sinceTime,
		Last:     statsLast,
	}

	envCfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	st, err := store.Open(envCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg, statsCurveWindow)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return report.Render(cmd.OutOrStdout())
	}

	ui := statsui.NewModel(st, cfg, statsCurveWindow)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect story files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Load a story file at every difficulty and report what it contains",
		Args:  cobra.ExactArgs(1),
		RunE:  runContentCheckCmd,
	})
	return cmd
}

func runContentCheckCmd(cmd *cobra.Command, args []string) error {
	envCfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	path := config.ResolveContent(args[0], envCfg.ContentDir, fileExists)
	if !fileExists(path) {
		return contentLoadError(path, envCfg.ContentDir, os.ErrNotExist)
	}
	return checkContent(cmd.OutOrStdout(), path, content.SourceFor(path))
}

func checkContent(w io.Writer, path string, src content.Source) error {
	if _, err := fmt.Fprintf(w, "%s\n", path); err != nil {
		return err
	}
	for _, name := range exercise.Names {
		table, err := exercise.Table(name)
		if err != nil {
			return err
		}
		for _, level := range difficulty.Levels {
			dcfg, err := table.Lookup(level)
			if err != nil {
				return err
			}
			frags, err := content.Load(src, dcfg, nil)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", name, level, err)
			}
			sum := content.Summarize(frags)
			if _, err := fmt.Fprintf(w, "  %-15s %-9s fragments=%d judged=%d checkpoints=%d words=%d paragraphs=%d hash=%s\n",
				name, level, sum.Fragments, sum.Judged, sum.Checkpoints, sum.Words, sum.Paragraphs, content.Fingerprint(frags)); err != nil {
				return err
			}
		}
	}
	return nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil || cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuistream configuration
# Uncomment a value to enable it. CLI flags override config values.

[exercise]
# kind = %q       # fluent-reading, speed-reading or bubble-pop
# difficulty = %q         # easy, moderate or hard
# wpm = %.0f                  # Reading rate in words per minute
# dial = 50                  # Reading rate as a 0-100 dial (overrides wpm)
# content = "story.yaml"     # Story file, relative paths are looked up in the content dir
# max-ramp = %.2f           # Largest fractional speed-up over a session
# ramp-period = %q         # How often the pace ramps
# budget-factor = %.1f        # Session time budget relative to the nominal pace
# lookahead = %.0f             # Cells queued beyond the right edge
# feedback = %q         # How long a mistake stays visible before rollback
# seed = 1                   # Fixed random seed
`,
		defaultExercise,
		defaultDifficulty,
		defaultWPM,
		timing.DefaultMaxRamp,
		timing.DefaultRampPeriod.String(),
		timing.DefaultBudgetFactor,
		defaultLookahead,
		defaultFeedback.String(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Dial == nil && cfg.WPM <= 0 {
		return fmt.Errorf("--wpm must be > 0")
	}
	if cfg.Dial != nil && (*cfg.Dial < 0 || *cfg.Dial > 100) {
		return fmt.Errorf("--dial must be between 0 and 100")
	}
	if cfg.Content == "" {
		return fmt.Errorf("no content given: pass a story file or set content in the config")
	}
	if cfg.MaxRamp < 0 {
		return fmt.Errorf("--max-ramp must be >= 0")
	}
	if cfg.RampPeriod <= 0 {
		return fmt.Errorf("--ramp-period must be > 0")
	}
	if cfg.BudgetFactor <= 0 {
		return fmt.Errorf("--budget-factor must be > 0")
	}
	if cfg.Lookahead < 0 {
		return fmt.Errorf("--lookahead must be >= 0")
	}
	if cfg.Feedback < 0 {
		return fmt.Errorf("--feedback must be >= 0")
	}
	return nil
}

func contentLoadError(path, dir string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load content: %v", err),
		fmt.Sprintf("looked for: %s", path),
		fmt.Sprintf("story files may also live in: %s", dir),
		"Check a file with: tuistream content check <file>",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
