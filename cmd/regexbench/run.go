package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dontdude/regexbench/internal/bench"
	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/queue"
	"github.com/dontdude/regexbench/internal/platform/toolchain"
	"github.com/dontdude/regexbench/internal/report"
)

var (
	errNoEngines = errors.New("no engines registered")
	errNoCases   = errors.New("no cases configured")
)

func runBenchmark(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID := uuid.NewString()
	started := time.Now()

	// 1. Build the harness and the corpus
	h, err := newHarness(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	set := h.corpus()
	if set.Len() == 0 {
		return errNoCases
	}

	// 2. Register engines
	engines, err := h.engines(ctx, set.Patterns(), engineNames)
	if err != nil {
		return err
	}
	if len(engines) == 0 {
		return errNoEngines
	}
	slog.Info("Starting run", "runID", runID, "engines", len(engines), "tests", len(set.Tests()), "benchmarks", len(set.Benchmarks()))

	// 3. Connect the result publisher (Fail-Fast)
	var pub *queue.RedisPublisher
	if redisAddr != "" {
		pub, err = queue.NewRedisPublisher(ctx, redisAddr)
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	// The text report moves to stderr when stdout carries JSON.
	var out io.Writer = os.Stdout
	if jsonOutput {
		out = os.Stderr
	}
	live := !h.progressDisabled()

	// 4. Correctness phase
	var reps []bench.CorrectnessReport
	if tests := set.Tests(); !noTests && len(tests) > 0 {
		var obs bench.CorrectnessObserver = report.Summary{W: out}
		if live {
			obs = report.NewTerminal(out)
		}
		reps = bench.RunCorrectness(engines, tests, obs)
	}

	// 5. Benchmark phase, observed by the progress monitor
	var results []bench.EngineResults
	if cases := set.Benchmarks(); len(cases) > 0 {
		runner := bench.NewRunner(engines, cases, bench.Options{
			Budget:        budget,
			MaxIterations: maxIterations,
			OnResult: func(r *bench.Result) {
				if pub == nil {
					return
				}
				if err := pub.PublishResult(ctx, r.Record(runID)); err != nil {
					slog.Warn("Failed to publish result", "engine", r.Engine.Name, "error", err)
				}
			},
		})

		var sinks []domain.ProgressSink
		if live {
			sinks = append(sinks, report.NewTerminal(out))
		}
		if pub != nil {
			sinks = append(sinks, pub)
		}

		runner.Start(ctx)
		if len(sinks) > 0 {
			bench.NewMonitor(runner, runID, sinks...).Run(ctx)
		}
		results = runner.Results()
		report.WriteBenchmarks(out, results)
	}

	// 6. Machine-readable report
	if jsonOutput {
		doc := report.NewDocument(runID, started, toolchain.Current().String(), reps, results)
		if err := report.WriteJSON(os.Stdout, doc); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run %s interrupted: %w", runID, err)
	}
	return nil
}
