package bench

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/dontdude/regexbench/internal/domain"
)

// ErrMismatch marks a benchmark iteration whose outcome differed from the
// expected one.
var ErrMismatch = errors.New("unexpected match outcome")

// Failure records why and where a measurement stopped early.
type Failure struct {
	// Iteration is the number of samples recorded before the failure, or 1
	// for a sliding-window case.
	Iteration int
	Err       error
}

// Result holds the measurements of one (engine, case) pair. It is written by
// the runner goroutine and may be read from any goroutine once Finished
// reports true.
type Result struct {
	Engine *domain.NamedEngine
	Case   domain.Case
	// Index is the position of Case in the benchmark list.
	Index int

	samples    atomic.Pointer[[]time.Duration]
	iterations atomic.Int64
	failure    atomic.Pointer[Failure]
	finished   atomic.Bool
	stats      atomic.Pointer[Statistics]
}

func newResult(engine *domain.NamedEngine, c domain.Case, index int) *Result {
	return &Result{Engine: engine, Case: c, Index: index}
}

// NewFinishedResult builds a completed Result from recorded samples, as
// when replaying measurements taken elsewhere.
func NewFinishedResult(engine *domain.NamedEngine, c domain.Case, index int, samples []time.Duration, count int, failure *Failure) *Result {
	r := newResult(engine, c, index)
	r.finish(samples, count, failure)
	return r
}

func (r *Result) finish(samples []time.Duration, count int, failure *Failure) {
	r.samples.Store(&samples)
	r.iterations.Store(int64(count))
	if failure != nil {
		r.failure.Store(failure)
	}
	r.finished.Store(true)
}

// Finished reports whether the measurement is complete.
func (r *Result) Finished() bool {
	return r.finished.Load()
}

// Iterations is the number of recorded samples.
func (r *Result) Iterations() int {
	return int(r.iterations.Load())
}

// Failure returns the failure, or nil when every iteration succeeded.
func (r *Result) Failure() *Failure {
	return r.failure.Load()
}

// Failed reports whether the measurement stopped on an error or mismatch.
func (r *Result) Failed() bool {
	return r.failure.Load() != nil
}

// Statistics computes the summary on first call and caches it. Concurrent
// first callers may each compute, but only one result is kept and returned
// to all of them. The sample buffer is released afterwards. Before the
// measurement finished it returns zero values without caching them.
func (r *Result) Statistics() Statistics {
	if s := r.stats.Load(); s != nil {
		return *s
	}
	if !r.Finished() {
		return Statistics{}
	}
	var computed Statistics
	if samples := r.samples.Load(); samples != nil {
		computed = Compute(*samples, r.Iterations())
	}
	if r.stats.CompareAndSwap(nil, &computed) {
		r.samples.Store(nil)
		return computed
	}
	return *r.stats.Load()
}

// Record flattens r for publishing.
func (r *Result) Record(runID string) domain.ResultRecord {
	s := r.Statistics()
	rec := domain.ResultRecord{
		RunID:      runID,
		Engine:     r.Engine.Name,
		CaseIndex:  r.Index,
		Case:       r.Case.String(),
		WindowSize: r.Case.WindowSize,
		Expected:   r.Case.Expected,
		Iterations: r.Iterations(),
		Min:        s.Min,
		Max:        s.Max,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
	}
	if f := r.Failure(); f != nil {
		rec.Failed = true
		rec.FailedIteration = f.Iteration
	}
	return rec
}
