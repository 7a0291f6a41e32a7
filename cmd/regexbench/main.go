package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dontdude/regexbench/internal/bench"
)

var (
	configPath    string
	logLevel      string
	noTests       bool
	noProgress    bool
	jsonOutput    bool
	redisAddr     string
	budget        time.Duration
	maxIterations int
	engineNames   []string
	jitEnabled    bool
)

var rootCmd = &cobra.Command{
	Use:   "regexbench",
	Short: "Check and benchmark regular expression engines",
	Long: `Runs every registered engine against the correctness corpus, then
measures each engine on every benchmark case and prints a report.

Examples:
  regexbench                          # built-in engines, default corpus
  regexbench --config bench.yaml      # add native engines and cases
  regexbench --jit --no-tests         # benchmark std::regex compiled per pattern
  regexbench --json > report.json     # machine-readable report`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	RunE:              runBenchmark,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("regexbench failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jitEnabled, "jit", false, "Register the std::regex engine compiled per pattern")

	rootCmd.Flags().BoolVar(&noTests, "no-tests", false, "Skip the correctness phase")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable live progress output")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Write a JSON report to stdout; the text report goes to stderr")
	rootCmd.Flags().StringVar(&redisAddr, "redis", os.Getenv("REDIS_ADDR"), "Redis address to publish results and progress to")
	rootCmd.Flags().DurationVar(&budget, "budget", bench.DefaultBudget, "Time budget per engine and case")
	rootCmd.Flags().IntVar(&maxIterations, "max-iterations", bench.DefaultMaxIterations, "Iteration cap per engine and case")
	rootCmd.Flags().StringSliceVar(&engineNames, "engines", nil, "Only run the named engines")

	rootCmd.AddCommand(compileCmd, casesCmd)
}

func setupLogger(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	// Logs go to stderr so that reports on stdout stay pipeable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
