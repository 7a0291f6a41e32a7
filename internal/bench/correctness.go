package bench

import (
	"time"

	"github.com/dontdude/regexbench/internal/domain"
)

// CaseOutcome is the result of one correctness case.
type CaseOutcome struct {
	// Index is 1-based.
	Index   int
	Case    domain.Case
	Actual  bool
	Err     error
	Elapsed time.Duration
}

// Passed reports whether the engine returned the expected outcome without
// error.
func (o CaseOutcome) Passed() bool {
	return o.Err == nil && o.Actual == o.Case.Expected
}

// CorrectnessReport summarizes one engine's correctness run.
type CorrectnessReport struct {
	Engine   *domain.NamedEngine
	Passed   int
	Failed   int
	Total    time.Duration
	Outcomes []CaseOutcome
}

// CorrectnessObserver follows a correctness run as it happens.
type CorrectnessObserver interface {
	CaseStarted(engine *domain.NamedEngine, index, total int)
	CaseFinished(engine *domain.NamedEngine, outcome CaseOutcome, total int)
	EngineFinished(report CorrectnessReport, total int)
}

// RunCorrectness checks every engine against every case in order. A failing
// case, including one where the engine returns an error or panics, is
// counted and the run moves on. obs may be nil.
func RunCorrectness(engines []*domain.NamedEngine, cases []domain.Case, obs CorrectnessObserver) []CorrectnessReport {
	reports := make([]CorrectnessReport, 0, len(engines))
	for _, e := range engines {
		rep := CorrectnessReport{Engine: e}
		for i, c := range cases {
			if obs != nil {
				obs.CaseStarted(e, i+1, len(cases))
			}
			cl := c.Clone()

			start := time.Now()
			actual, err := invoke(e.Engine, cl.Pattern, cl.Input)
			elapsed := time.Since(start)

			out := CaseOutcome{Index: i + 1, Case: c, Actual: actual, Err: err, Elapsed: elapsed}
			rep.Total += elapsed
			if out.Passed() {
				rep.Passed++
			} else {
				rep.Failed++
			}
			rep.Outcomes = append(rep.Outcomes, out)
			if obs != nil {
				obs.CaseFinished(e, out, len(cases))
			}
		}
		if obs != nil {
			obs.EngineFinished(rep, len(cases))
		}
		reports = append(reports, rep)
	}
	return reports
}
