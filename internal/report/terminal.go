package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/dontdude/regexbench/internal/bench"
	"github.com/dontdude/regexbench/internal/domain"
)

// Terminal draws live progress on a terminal, overwriting the current line.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

var (
	_ domain.ProgressSink       = (*Terminal)(nil)
	_ bench.CorrectnessObserver = (*Terminal)(nil)
)

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, args...)
}

func (t *Terminal) Progress(ev domain.ProgressEvent) {
	switch ev.Kind {
	case domain.ProgressRunning:
		t.printf("\rBenchmarking %s: %.1f%% ", ev.Engine, ev.Percent)
	case domain.ProgressEngineDone:
		t.printf("\rBenchmarking %s done.\n", ev.Engine)
	case domain.ProgressEngineFailed:
		t.printf("\rBenchmarking %s failed.\n", ev.Engine)
	case domain.ProgressFinished:
		t.printf("\n")
	}
}

func (t *Terminal) CaseStarted(engine *domain.NamedEngine, index, total int) {
	t.printf("\r%s: Running test %d/%d... ", engine.Name, index, total)
}

func (t *Terminal) CaseFinished(engine *domain.NamedEngine, out bench.CaseOutcome, total int) {
	if out.Passed() {
		t.printf("\r%s: Test %d/%d has succeeded. ", engine.Name, out.Index, total)
		return
	}
	expected := "match"
	if !out.Case.Expected {
		expected = "non-match"
	}
	if out.Err != nil {
		t.printf("\r%s: Test %d/%d has failed, expected %s: %v (%s)\n", engine.Name, out.Index, total, expected, out.Err, out.Case)
		return
	}
	t.printf("\r%s: Test %d/%d has failed, expected %s. (%s)\n", engine.Name, out.Index, total, expected, out.Case)
}

func (t *Terminal) EngineFinished(rep bench.CorrectnessReport, _ int) {
	t.printf("\n%s\n", CorrectnessLine(rep))
}

// Summary prints only the per-engine correctness line, for output that is
// not a terminal.
type Summary struct {
	W io.Writer
}

var _ bench.CorrectnessObserver = Summary{}

func (Summary) CaseStarted(*domain.NamedEngine, int, int)                {}
func (Summary) CaseFinished(*domain.NamedEngine, bench.CaseOutcome, int) {}

func (s Summary) EngineFinished(rep bench.CorrectnessReport, _ int) {
	fmt.Fprintln(s.W, CorrectnessLine(rep))
}
