package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewFansOutToFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "typewright.log")
	var console bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Path: path, Console: &console})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	logger.Debug("hidden")
	logger.Warn("emit failed", "error", errors.New("boom"))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for name, out := range map[string]string{"file": string(data), "console": console.String()} {
		if !strings.Contains(out, "emit failed") || !strings.Contains(out, "err=boom") {
			t.Fatalf("%s output missing record: %q", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Fatalf("%s output should drop debug records: %q", name, out)
		}
	}
}

func TestNewWithoutSinks(t *testing.T) {
	logger, closer, err := New(Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
