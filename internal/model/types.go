// Package model defines shared data structures.
package model

import "time"

// Config defines session settings after config file and flags are merged.
type Config struct {
	Exercise     string
	Difficulty   string
	WPM          float64
	Dial         *float64
	Content      string
	MaxRamp      float64
	RampPeriod   time.Duration
	BudgetFactor float64
	Lookahead    float64
	Feedback     time.Duration
	Seed         *int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Exercise string
	Since    *time.Time
	Last     int
}

// SessionStats captures a finished streaming session.
type SessionStats struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Exercise    string
	Difficulty  string
	WPM         float64
	ContentPath string
	ContentHash string
	Correct     int
	Wrong       int
	Missed      int
	Delivered   int
	Rollbacks   int
	Multiplier  float64
	DurationMs  int64
	Completed   bool
	TimedOut    bool
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  string
	EndedAt    time.Time
	Exercise   string
	Difficulty string
	Correct    int
	Wrong      int
	Missed     int
	Delivered  int
	Rollbacks  int
	DurationMs int64
	Completed  bool
	TimedOut   bool
}
