// Package main provides the CLI entrypoint for keytally.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keytally/internal/classify"
	"github.com/verte-zerg/keytally/internal/config"
	"github.com/verte-zerg/keytally/internal/counter"
	"github.com/verte-zerg/keytally/internal/listener"
	"github.com/verte-zerg/keytally/internal/logging"
	"github.com/verte-zerg/keytally/internal/model"
	"github.com/verte-zerg/keytally/internal/stats"
	"github.com/verte-zerg/keytally/internal/store"
	"github.com/verte-zerg/keytally/internal/tracker"
)

const (
	defaultScriptASpec = "U+4E00-U+9FFF"
	defaultScriptBSpec = "A-Z,a-z"
	defaultRecentDays  = 7
	defaultAvgWindow   = 7
)

var (
	trackFlushInterval int64
	trackDB            string
	trackMetricsAddr   string
	trackLogLevel      string
	trackLogFormat     string
	trackAutoRollover  bool

	recentDays      int
	recentAvgWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keytally",
		Short:         "Daily keystroke counter",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackCmd,
	}

	rootCmd.Flags().Int64Var(&trackFlushInterval, "flush-interval", counter.DefaultFlushEvery, "keys between flushes to the store")
	rootCmd.Flags().StringVar(&trackDB, "db", config.DefaultDBPath(), "path to SQLite database")
	rootCmd.Flags().StringVar(&trackMetricsAddr, "metrics-addr", "", "address for Prometheus metrics (disabled when empty)")
	rootCmd.Flags().StringVar(&trackLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&trackLogFormat, "log-format", "text", "log format (text, json)")
	rootCmd.Flags().BoolVar(&trackAutoRollover, "auto-rollover", true, "flush and reset counters at local midnight")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRecentCmd())
	rootCmd.AddCommand(newAllCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTrackCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyInt64Config(cmd, "flush-interval", &trackFlushInterval, fileCfg.Track.FlushInterval)
	applyStringConfig(cmd, "db", &trackDB, fileCfg.Track.DB)
	applyStringConfig(cmd, "metrics-addr", &trackMetricsAddr, fileCfg.Track.MetricsAddr)
	applyStringConfig(cmd, "log-level", &trackLogLevel, fileCfg.Track.LogLevel)
	applyStringConfig(cmd, "log-format", &trackLogFormat, fileCfg.Track.LogFormat)
	applyBoolConfig(cmd, "auto-rollover", &trackAutoRollover, fileCfg.Track.AutoRollover)

	if trackFlushInterval <= 0 {
		return fmt.Errorf("--flush-interval must be > 0")
	}

	logger, err := logging.New(logging.Options{Level: trackLogLevel, Format: trackLogFormat})
	if err != nil {
		return err
	}

	classifier, err := classifierFromConfig(fileCfg.Classify)
	if err != nil {
		return err
	}

	st, err := store.Open(trackDB, logger)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	if trackMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("serving metrics", "addr", trackMetricsAddr)
			if err := http.ListenAndServe(trackMetricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	source := listener.NewTermSource(os.Stdin)
	tr := tracker.New(tracker.Options{
		Source:       source,
		Store:        st,
		Classifier:   classifier,
		FlushEvery:   trackFlushInterval,
		AutoRollover: trackAutoRollover,
		Logger:       logger,
	})

	if err := tr.Start(); err != nil {
		return fmt.Errorf("failed to start tracking: %w", err)
	}
	logger.Info("tracking keystrokes; Ctrl+C or Ctrl+D to stop",
		"flush_interval", trackFlushInterval, "db", trackDB)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-source.Done():
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	}
	signal.Stop(sigCh)

	if err := tr.Stop(); err != nil {
		return fmt.Errorf("failed to stop tracking: %w", err)
	}
	return stats.RenderSnapshot(cmd.OutOrStdout(), tr.CurrentSnapshot())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [date]",
		Short: "Show counts for one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	day := model.Day(time.Now())
	if len(args) == 1 {
		parsed, err := model.ParseDay(args[0])
		if err != nil {
			return err
		}
		day = parsed
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		stat, err := st.Get(ctx, day)
		if err != nil {
			return err
		}
		if stat == nil {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "no stats recorded for %s\n", day)
			return err
		}
		return stats.RenderStat(cmd.OutOrStdout(), *stat)
	})
}

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent days",
		Args:  cobra.NoArgs,
		RunE:  runRecentCmd,
	}
	cmd.Flags().IntVar(&recentDays, "days", defaultRecentDays, "number of days to show")
	cmd.Flags().IntVar(&recentAvgWindow, "avg-window", defaultAvgWindow, "moving-average window in days, 0 disables the avg line")
	return cmd
}

func runRecentCmd(cmd *cobra.Command, _ []string) error {
	if recentDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if recentAvgWindow < 0 {
		return fmt.Errorf("--avg-window must be >= 0")
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		days, err := st.Recent(ctx, recentDays)
		if err != nil {
			return err
		}
		return stats.RenderDays(cmd.OutOrStdout(), days, recentAvgWindow)
	})
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Show every recorded day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				days, err := st.All(ctx)
				if err != nil {
					return err
				}
				return stats.RenderDays(cmd.OutOrStdout(), days, 0)
			})
		},
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the all-time aggregate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				sum, err := st.Summary(ctx)
				if err != nil {
					return err
				}
				return stats.RenderSummary(cmd.OutOrStdout(), sum)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete the row for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := model.ParseDay(args[0])
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, st *store.Store) error {
				deleted, err := st.Delete(ctx, day)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("no stats recorded for %s", day)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", day)
				return err
			})
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Classify the characters of a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyzeCmd,
	}
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	classifier, err := classifierFromConfig(fileCfg.Classify)
	if err != nil {
		return err
	}

	var text []byte
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	} else {
		text, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	counts := classifier.Text(string(text))
	w := cmd.OutOrStdout()
	_, err = fmt.Fprintf(w, "script-a: %d\nscript-b: %d\nother:    %d\ntotal:    %d\n",
		counts.ScriptA, counts.ScriptB, counts.Other, counts.Total)
	return err
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

func withStore(fn func(context.Context, *store.Store) error) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dbPath := config.DefaultDBPath()
	if fileCfg.Track.DB != nil && *fileCfg.Track.DB != "" {
		dbPath = *fileCfg.Track.DB
	}
	logger, err := logging.New(logging.Options{Level: "warn"})
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(context.Background(), st)
}

func classifierFromConfig(cfg config.ClassifyConfig) (*classify.Classifier, error) {
	scriptA := classify.DefaultScriptA
	scriptB := classify.DefaultScriptB
	var err error
	if cfg.ScriptA != nil {
		if scriptA, err = classify.ParseRanges(*cfg.ScriptA); err != nil {
			return nil, fmt.Errorf("invalid script-a ranges: %w", err)
		}
	}
	if cfg.ScriptB != nil {
		if scriptB, err = classify.ParseRanges(*cfg.ScriptB); err != nil {
			return nil, fmt.Errorf("invalid script-b ranges: %w", err)
		}
	}
	return classify.New(scriptA, scriptB), nil
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keytally configuration
# Uncomment a value to enable it. CLI flags override config values.

[track]
# flush-interval = %d    # Keys between flushes to the store
# auto-rollover = true    # Flush and reset counters at local midnight
# db = %q                 # SQLite database path
# metrics-addr = ""       # Prometheus metrics address, e.g. "127.0.0.1:9184"
# log-level = "info"      # debug, info, warn, error
# log-format = "text"     # text, json

[classify]
# script-a = %q   # Code-point ranges counted as script A
# script-b = %q          # Code-point ranges counted as script B
`,
		counter.DefaultFlushEvery,
		config.DefaultDBPath(),
		defaultScriptASpec,
		defaultScriptBSpec,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
