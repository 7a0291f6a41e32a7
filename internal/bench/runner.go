// Package bench measures engines: a correctness pass over the test cases,
// then a sequential benchmark of every engine and case pair observed by a
// progress monitor.
package bench

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dontdude/regexbench/internal/domain"
)

// Defaults for Options.
const (
	DefaultBudget        = 10 * time.Second
	DefaultMaxIterations = 100_000_000
	DefaultCloneEvery    = 100_000
)

// Options tunes a Runner.
type Options struct {
	// Budget bounds the scheduling of further iterations of one pair. A
	// call in flight when it expires is allowed to finish.
	Budget time.Duration
	// MaxIterations caps, and sizes, the sample buffer of whole-input cases.
	MaxIterations int
	// CloneEvery replaces the pattern buffer with a fresh copy after this
	// many iterations so that identity-memoizing engines are not flattered.
	CloneEvery int
	// OnResult is called on the runner goroutine after each pair.
	OnResult func(*Result)
}

func (o Options) withDefaults() Options {
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.CloneEvery <= 0 {
		o.CloneEvery = DefaultCloneEvery
	}
	return o
}

// Job describes the pair being measured. Jobs are immutable once published.
type Job struct {
	Result   *Result
	Start    time.Time
	Deadline time.Time

	engineFailures *atomic.Int64
}

// EngineFailed reports whether any pair of the job's engine has failed so
// far.
func (j *Job) EngineFailed() bool {
	return j.engineFailures.Load() > 0
}

// EngineResults groups the results of one engine in case order.
type EngineResults struct {
	Engine  *domain.NamedEngine
	Results []*Result
}

// Runner measures every engine against every benchmark case, one pair at a
// time, on a single goroutine.
type Runner struct {
	engines []*domain.NamedEngine
	cases   []domain.Case
	opts    Options

	current atomic.Pointer[Job]
	results []EngineResults
	done    chan struct{}
}

// NewRunner prepares a run over cases, which the runner takes ownership of.
func NewRunner(engines []*domain.NamedEngine, cases []domain.Case, opts Options) *Runner {
	return &Runner{
		engines: engines,
		cases:   cases,
		opts:    opts.withDefaults(),
		done:    make(chan struct{}),
	}
}

// Start runs the benchmark on a new goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context) {
	go r.Run(ctx)
}

// Done is closed when the run has finished.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Current returns the pair in flight, or nil between engines and after the
// run.
func (r *Runner) Current() *Job {
	return r.current.Load()
}

// CaseCount is the number of benchmark cases per engine.
func (r *Runner) CaseCount() int {
	return len(r.cases)
}

// Results returns the measurements per engine. Only call after Done.
func (r *Runner) Results() []EngineResults {
	<-r.done
	return r.results
}

// Run measures synchronously. Cancelling ctx stops scheduling further pairs;
// pairs not started are absent from Results.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	for _, e := range r.engines {
		er := EngineResults{Engine: e}
		failures := new(atomic.Int64)
		for i, c := range r.cases {
			if ctx.Err() != nil {
				break
			}
			res := newResult(e, c, i)
			start := time.Now()
			job := &Job{
				Result:         res,
				Start:          start,
				Deadline:       start.Add(r.opts.Budget),
				engineFailures: failures,
			}
			r.current.Store(job)

			if c.SlidingWindow() {
				r.measureSlidingWindow(job)
			} else {
				r.measure(ctx, job)
			}
			if f := res.Failure(); f != nil {
				failures.Add(1)
				slog.Debug("Benchmark failed", "engine", e.Name, "case", i, "iteration", f.Iteration, "error", f.Err)
			}
			res.Statistics()
			er.Results = append(er.Results, res)
			if r.opts.OnResult != nil {
				r.opts.OnResult(res)
			}
		}
		r.current.Store(nil)
		r.results = append(r.results, er)
	}
}

func (r *Runner) measure(ctx context.Context, job *Job) {
	res := job.Result
	c := res.Case
	engine := res.Engine.Engine
	samples := make([]time.Duration, r.opts.MaxIterations)
	pattern := bytes.Clone(c.Pattern)

	var failure *Failure
	i := 0
	for {
		start := time.Now()
		actual, err := invoke(engine, pattern, c.Input)
		end := time.Now()
		if err != nil {
			failure = &Failure{Iteration: i, Err: err}
			break
		}
		if actual != c.Expected {
			failure = &Failure{Iteration: i, Err: ErrMismatch}
			break
		}
		samples[i] = end.Sub(start)
		i++
		if i%r.opts.CloneEvery == 0 {
			pattern = bytes.Clone(c.Pattern)
			if ctx.Err() != nil {
				break
			}
		}
		if !end.Before(job.Deadline) || i == r.opts.MaxIterations {
			break
		}
	}
	res.finish(samples, i, failure)
}

// measureSlidingWindow times one pass over the input in windows of the case's
// size. The last window is truncated. Outcomes are not checked.
func (r *Runner) measureSlidingWindow(job *Job) {
	res := job.Result
	c := res.Case
	engine := res.Engine.Engine
	pattern := bytes.Clone(c.Pattern)

	var failure *Failure
	var total time.Duration
	for off := 0; off < len(c.Input); off += c.WindowSize {
		window := bytes.Clone(c.Input[off:min(off+c.WindowSize, len(c.Input))])
		start := time.Now()
		_, err := invoke(engine, pattern, window)
		total += time.Since(start)
		if err != nil {
			failure = &Failure{Iteration: 1, Err: err}
			break
		}
	}
	res.finish([]time.Duration{total}, 1, failure)
}

// invoke calls the engine, turning a panic into an error.
func invoke(e domain.Engine, pattern, input []byte) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return e.Match(pattern, input)
}
