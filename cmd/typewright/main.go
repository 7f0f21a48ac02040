// Package main provides the CLI entrypoint for typewright.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typewright/internal/config"
	"github.com/verte-zerg/typewright/internal/engine"
	"github.com/verte-zerg/typewright/internal/logging"
	"github.com/verte-zerg/typewright/internal/model"
	"github.com/verte-zerg/typewright/internal/platform"
	"github.com/verte-zerg/typewright/internal/stats"
	"github.com/verte-zerg/typewright/internal/store"
)

const (
	defaultLogLevel      = "info"
	defaultHistoryLast   = 20
	defaultHistoryWindow = 5
)

var (
	inputFile string
	inputText string

	typingWPM             float64
	typingCountdown       int
	typingResumeCountdown int
	typingDuration        time.Duration
	typingMistakes        bool
	typingSeed            int64

	focusPoll time.Duration

	dryRun    bool
	dryRunOut string
	noTUI     bool

	controlAddr string
	logLevel    string
	logPath     string

	historyLast   int
	historyWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typewright",
		Short:         "Type text into the focused application at a human pace",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTypeCmd,
	}

	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "read the text to type from a file")
	rootCmd.Flags().StringVarP(&inputText, "text", "t", "", "text to type")
	rootCmd.Flags().Float64Var(&typingWPM, "wpm", engine.DefaultWPM, "typing speed in words per minute")
	rootCmd.Flags().IntVar(&typingCountdown, "countdown", engine.DefaultCountdown, "seconds before typing starts")
	rootCmd.Flags().IntVar(&typingResumeCountdown, "resume-countdown", engine.DefaultResumeCountdown, "seconds before typing continues after a manual resume")
	rootCmd.Flags().DurationVar(&typingDuration, "duration", 0, "stretch the session to roughly this long (0 = natural pace)")
	rootCmd.Flags().BoolVar(&typingMistakes, "mistakes", false, "make and correct an occasional typo")
	rootCmd.Flags().Int64Var(&typingSeed, "seed", 0, "random seed (0 = time based)")
	rootCmd.Flags().DurationVar(&focusPoll, "focus-poll", platform.DefaultFocusPoll, "interval between foreground application checks")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "record keystrokes instead of sending them")
	rootCmd.Flags().StringVar(&dryRunOut, "dry-run-out", "", "file receiving dry-run keystrokes (default stdout, requires --no-tui)")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "run without the terminal UI and log to stderr")
	rootCmd.Flags().StringVar(&controlAddr, "control-addr", "", "serve the HTTP control API on this address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logPath, "log-file", config.DefaultLogPath(), "log file path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTypeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	text, fromStdin, err := readInput(cmd)
	if err != nil {
		return err
	}
	return runSession(cmd, cfg, text, fromStdin)
}

func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "wpm", &typingWPM, fileCfg.Typing.WPM)
	applyIntConfig(cmd, "countdown", &typingCountdown, fileCfg.Typing.Countdown)
	applyIntConfig(cmd, "resume-countdown", &typingResumeCountdown, fileCfg.Typing.ResumeCountdown)
	applyBoolConfig(cmd, "mistakes", &typingMistakes, fileCfg.Typing.Mistakes)
	if err := applyDurationConfig(cmd, "duration", &typingDuration, fileCfg.Typing.Duration); err != nil {
		return model.Config{}, err
	}
	if err := applyDurationConfig(cmd, "focus-poll", &focusPoll, fileCfg.Focus.Poll); err != nil {
		return model.Config{}, err
	}
	applyStringConfig(cmd, "control-addr", &controlAddr, fileCfg.Control.Addr)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logPath, fileCfg.Log.Path)

	cfg := model.Config{
		WPM:             typingWPM,
		Countdown:       typingCountdown,
		ResumeCountdown: typingResumeCountdown,
		Duration:        typingDuration,
		Mistakes:        typingMistakes,
		Seed:            typingSeed,
		FocusPoll:       focusPoll,
		ControlAddr:     controlAddr,
		LogLevel:        logLevel,
		LogPath:         logPath,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	if dryRun && dryRunOut == "" && !noTUI {
		return model.Config{}, fmt.Errorf("--dry-run without --dry-run-out requires --no-tui")
	}
	return cfg, nil
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
	path := config.DefaultConfigPath()
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

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 = all)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend line")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.HistoryConfig{Last: historyLast, Window: historyWindow})
	if err != nil {
		return err
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
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
	return fmt.Sprintf(`# typewright configuration
# Uncomment a value to enable it. CLI flags override config values.

[typing]
# wpm = %d                # Words per minute
# countdown = %d          # Seconds before typing starts
# resume-countdown = %d    # Seconds before typing continues after a manual resume
# duration = "0s"         # Stretch the session to roughly this long
# mistakes = false        # Make and correct an occasional typo

[focus]
# poll = %q           # Interval between foreground application checks

[control]
# addr = "127.0.0.1:7878" # Serve the HTTP control API

[log]
# level = %q          # debug, info, warn or error
# path = %q
`,
		engine.DefaultWPM,
		engine.DefaultCountdown,
		engine.DefaultResumeCountdown,
		platform.DefaultFocusPoll.String(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.WPM <= 0 {
		return fmt.Errorf("--wpm must be > 0")
	}
	if cfg.Countdown < 0 {
		return fmt.Errorf("--countdown must be >= 0")
	}
	if cfg.ResumeCountdown < 0 {
		return fmt.Errorf("--resume-countdown must be >= 0")
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	if cfg.FocusPoll <= 0 {
		return fmt.Errorf("--focus-poll must be > 0")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

// errOut receives best-effort diagnostics from logErrf.
var errOut io.Writer = os.Stderr

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(errOut, format, args...)
}
