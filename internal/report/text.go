package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cheynewallace/tabby"

	"github.com/dontdude/regexbench/internal/bench"
)

// CorrectnessLine summarizes one engine's correctness run, for example
// "regexp2: 140 succeeded & 1 failed in 3 ms".
func CorrectnessLine(rep bench.CorrectnessReport) string {
	var sb strings.Builder
	sb.WriteString(rep.Engine.Name)
	sb.WriteString(": ")
	total := rep.Passed + rep.Failed
	if rep.Failed != total {
		fmt.Fprintf(&sb, "%d succeeded", rep.Passed)
		if rep.Failed != 0 {
			sb.WriteString(" & ")
		}
	}
	if rep.Failed != 0 {
		fmt.Fprintf(&sb, "%d failed", rep.Failed)
	}
	u := BestUnit(rep.Total)
	fmt.Fprintf(&sb, " in %s %s", Format(rep.Total, u), u.Name)
	return sb.String()
}

// EngineUnit picks the display unit for an engine from the smallest minimum
// across its benchmarks.
func EngineUnit(results []*bench.Result) Unit {
	smallest := time.Duration(math.MaxInt64)
	for _, r := range results {
		smallest = min(smallest, r.Statistics().Min)
	}
	return BestUnit(smallest)
}

// Status describes how a benchmark ended; empty when it succeeded.
func Status(r *bench.Result) string {
	f := r.Failure()
	if f == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("failed")
	if f.Iteration != 0 {
		fmt.Fprintf(&sb, " at iteration %d", f.Iteration)
	}
	if !r.Case.SlidingWindow() {
		if r.Case.Expected {
			sb.WriteString(" (expected match)")
		} else {
			sb.WriteString(" (expected non-match)")
		}
	}
	return sb.String()
}

// WriteBenchmarks prints one table per engine.
func WriteBenchmarks(w io.Writer, results []bench.EngineResults) {
	for _, er := range results {
		fmt.Fprintf(w, "%s:\n", er.Engine.Name)
		if len(er.Results) == 0 {
			fmt.Fprintln(w, "  no benchmarks ran")
			continue
		}
		u := EngineUnit(er.Results)

		t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
		t.AddHeader("BENCHMARK", "MEAN", "STDDEV", "RANGE", "UNIT", "ITERATIONS", "STATUS")
		for i, r := range er.Results {
			s := r.Statistics()
			n := r.Iterations()
			if n == 1 {
				t.AddLine(i+1, Format(s.Mean, u), "", "", u.Name, "1 iteration", Status(r))
				continue
			}
			t.AddLine(i+1,
				Format(s.Mean, u),
				"± "+Format(s.StdDev, u),
				"["+Format(s.Min, u)+" … "+Format(s.Max, u)+"]",
				u.Name,
				fmt.Sprintf("%d iterations", n),
				Status(r),
			)
		}
		t.Print()
	}
}

// WriteCases lists cases with their corpus index.
func WriteCases(w io.Writer, title string, cases []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(cases))
	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("#", "CASE")
	for i, c := range cases {
		t.AddLine(i+1, c)
	}
	t.Print()
}
