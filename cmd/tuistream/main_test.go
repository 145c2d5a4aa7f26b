package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuistream/internal/config"
	"github.com/verte-zerg/tuistream/internal/content"
	"github.com/verte-zerg/tuistream/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Exercise.Kind != nil || cfg.Exercise.WPM != nil {
		t.Fatalf("expected commented template to leave values unset, got %+v", cfg.Exercise)
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var wpm float64
	var difficultyName string
	cmd.Flags().Float64Var(&wpm, "wpm", 200, "")
	cmd.Flags().StringVar(&difficultyName, "difficulty", "easy", "")
	if err := cmd.Flags().Set("wpm", "300"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	fileWPM := 150.0
	fileDifficulty := "hard"
	applyFloatConfig(cmd, "wpm", &wpm, &fileWPM)
	applyStringConfig(cmd, "difficulty", &difficultyName, &fileDifficulty)

	if wpm != 300 {
		t.Fatalf("expected flag value to win, got %v", wpm)
	}
	if difficultyName != "hard" {
		t.Fatalf("expected config value to apply, got %q", difficultyName)
	}
}

func TestApplyDurationConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var feedback time.Duration
	cmd.Flags().DurationVar(&feedback, "feedback", time.Second, "")

	value := "250ms"
	if err := applyDurationConfig(cmd, "feedback", &feedback, &value); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if feedback != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", feedback)
	}

	bad := "soon"
	if err := applyDurationConfig(cmd, "feedback", &feedback, &bad); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{
		WPM:          200,
		Content:      "story.yaml",
		MaxRamp:      0.1,
		RampPeriod:   time.Second,
		BudgetFactor: 2,
		Lookahead:    10,
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	noContent := valid
	noContent.Content = ""
	if err := validateConfig(noContent); err == nil {
		t.Fatalf("expected error without content")
	}

	dial := 120.0
	badDial := valid
	badDial.Dial = &dial
	if err := validateConfig(badDial); err == nil {
		t.Fatalf("expected error for dial out of range")
	}
}

func TestCheckContentReportsEveryLevel(t *testing.T) {
	src := content.Records{
		{Text: "The {cat} sat down.", Variants: map[string]string{"vocab": "dog", "spelling": "kat"}},
		{Text: "It was late.", Checkpoint: true},
	}
	var buf bytes.Buffer
	if err := checkContent(&buf, "story.yaml", src); err != nil {
		t.Fatalf("check: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"fluent-reading", "speed-reading", "bubble-pop", "easy", "moderate", "hard", "fragments=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 10 {
		t.Fatalf("expected header plus 9 rows, got %d lines", lines)
	}
}

func TestNewLoggerFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("nonsense", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}
