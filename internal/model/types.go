// Package model defines shared data structures.
package model

import "time"

// Config defines session settings after flags and the config file are merged.
type Config struct {
	WPM             float64
	Countdown       int
	ResumeCountdown int
	Duration        time.Duration
	Mistakes        bool
	Seed            int64

	FocusPoll time.Duration

	ControlAddr string

	LogLevel string
	LogPath  string
}

// RunRecord captures a completed typing session.
type RunRecord struct {
	ID          int64
	StartedAt   time.Time
	EndedAt     time.Time
	Chars       int
	WPM         float64
	RequestedMs int64
	Mistakes    int
	Pauses      int
	DurationMs  int64
}

// HistoryConfig defines filters for the history command.
type HistoryConfig struct {
	Last   int
	Window int
}
