package bench

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontdude/regexbench/internal/domain"
)

// countingEngine answers true for the first okCalls calls, then behaves as
// configured.
type countingEngine struct {
	mu       sync.Mutex
	calls    int
	okCalls  int
	after    func() (bool, error)
	patterns map[*byte]bool
	windows  []int
}

func (e *countingEngine) Match(pattern, input []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.patterns != nil {
		e.patterns[unsafe.SliceData(pattern)] = true
	}
	e.windows = append(e.windows, len(input))
	if e.okCalls < 0 || e.calls <= e.okCalls || e.after == nil {
		return true, nil
	}
	return e.after()
}

func named(name string, e domain.Engine) *domain.NamedEngine {
	return &domain.NamedEngine{Name: name, Engine: e}
}

func runOne(t *testing.T, e domain.Engine, c domain.Case, opts Options) *Result {
	t.Helper()
	r := NewRunner([]*domain.NamedEngine{named("e", e)}, []domain.Case{c}, opts)
	r.Run(context.Background())
	results := r.Results()
	require.Len(t, results, 1)
	require.Len(t, results[0].Results, 1)
	return results[0].Results[0]
}

var positive = domain.Case{Pattern: []byte("a+"), Input: []byte("aaa"), Expected: true, Benchmark: true}

func TestMeasureStopsAtIterationCap(t *testing.T) {
	e := &countingEngine{okCalls: -1}
	res := runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 250})

	assert.Equal(t, 250, res.Iterations())
	assert.Equal(t, 250, e.calls)
	assert.False(t, res.Failed())
}

func TestMeasureStopsOnMismatch(t *testing.T) {
	e := &countingEngine{okCalls: 7, after: func() (bool, error) { return false, nil }}
	res := runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 1000})

	assert.Equal(t, 8, e.calls, "no call after the mismatch")
	assert.Equal(t, 7, res.Iterations())
	f := res.Failure()
	require.NotNil(t, f)
	assert.Equal(t, 7, f.Iteration)
	assert.ErrorIs(t, f.Err, ErrMismatch)
}

func TestMeasureStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	e := &countingEngine{okCalls: 3, after: func() (bool, error) { return false, boom }}
	res := runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 1000})

	assert.Equal(t, 4, e.calls)
	assert.Equal(t, 3, res.Iterations())
	require.NotNil(t, res.Failure())
	assert.ErrorIs(t, res.Failure().Err, boom)
}

func TestMeasureFailingFirstIteration(t *testing.T) {
	e := &countingEngine{okCalls: 0, after: func() (bool, error) { return false, nil }}
	res := runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 1000})

	assert.Zero(t, res.Iterations())
	require.NotNil(t, res.Failure())
	assert.Zero(t, res.Failure().Iteration)
	assert.Equal(t, Statistics{}, res.Statistics())
}

func TestMeasureRecoversPanics(t *testing.T) {
	e := &countingEngine{okCalls: 2, after: func() (bool, error) { panic("native fault") }}
	res := runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 1000})

	require.NotNil(t, res.Failure())
	assert.ErrorContains(t, res.Failure().Err, "native fault")
	assert.Equal(t, 2, res.Iterations())
}

func TestMeasureHonorsBudget(t *testing.T) {
	slow := domain.EngineFunc(func(_, _ []byte) (bool, error) {
		time.Sleep(2 * time.Millisecond)
		return true, nil
	})
	res := runOne(t, slow, positive, Options{Budget: 30 * time.Millisecond, MaxIterations: 10_000})

	assert.Greater(t, res.Iterations(), 0)
	assert.Less(t, res.Iterations(), 100)
	assert.GreaterOrEqual(t, res.Statistics().Min, 2*time.Millisecond)
}

func TestMeasureClonesPatternPeriodically(t *testing.T) {
	e := &countingEngine{okCalls: -1, patterns: make(map[*byte]bool)}
	runOne(t, e, positive, Options{Budget: time.Hour, MaxIterations: 35, CloneEvery: 10})

	assert.Len(t, e.patterns, 4)
}

func TestMeasureDoesNotShareCorpusPattern(t *testing.T) {
	e := &countingEngine{okCalls: -1, patterns: make(map[*byte]bool)}
	c := positive.Clone()
	runOne(t, e, c, Options{Budget: time.Hour, MaxIterations: 5})

	assert.False(t, e.patterns[unsafe.SliceData(c.Pattern)])
}

func TestSlidingWindowInvocations(t *testing.T) {
	for _, tc := range []struct {
		n, w    int
		windows []int
	}{
		{n: 100, w: 40, windows: []int{40, 40, 20}},
		{n: 80, w: 40, windows: []int{40, 40}},
		{n: 3, w: 40, windows: []int{3}},
		{n: 0, w: 40, windows: nil},
	} {
		e := &countingEngine{okCalls: -1}
		c := domain.Case{Pattern: []byte(".*"), Input: make([]byte, tc.n), Benchmark: true, Expected: true, WindowSize: tc.w}
		res := runOne(t, e, c, Options{})

		assert.Equal(t, tc.windows, e.windows, "n=%d w=%d", tc.n, tc.w)
		assert.Equal(t, (tc.n+tc.w-1)/tc.w, e.calls)
		assert.Equal(t, 1, res.Iterations())
		assert.False(t, res.Failed())
	}
}

func TestSlidingWindowIgnoresOutcome(t *testing.T) {
	e := &countingEngine{okCalls: 0, after: func() (bool, error) { return false, nil }}
	c := domain.Case{Pattern: []byte("x"), Input: make([]byte, 10), Benchmark: true, Expected: true, WindowSize: 3}
	res := runOne(t, e, c, Options{})

	assert.Equal(t, 4, e.calls)
	assert.False(t, res.Failed())
}

func TestSlidingWindowErrorFailsAtIterationOne(t *testing.T) {
	e := &countingEngine{okCalls: 1, after: func() (bool, error) { return false, errors.New("bad") }}
	c := domain.Case{Pattern: []byte("x"), Input: make([]byte, 10), Benchmark: true, Expected: true, WindowSize: 3}
	res := runOne(t, e, c, Options{})

	assert.Equal(t, 2, e.calls)
	require.NotNil(t, res.Failure())
	assert.Equal(t, 1, res.Failure().Iteration)
	assert.Equal(t, 1, res.Iterations())
}

func TestRunnerVisitsEveryPairInOrder(t *testing.T) {
	a := named("a", &countingEngine{okCalls: -1})
	b := named("b", &countingEngine{okCalls: 0, after: func() (bool, error) { return false, nil }})
	cases := []domain.Case{positive, positive.Clone(), positive.Clone()}

	var seen []string
	r := NewRunner([]*domain.NamedEngine{a, b}, cases, Options{
		Budget:        time.Hour,
		MaxIterations: 3,
		OnResult: func(res *Result) {
			seen = append(seen, res.Engine.Name)
		},
	})
	r.Start(context.Background())
	<-r.Done()

	assert.Nil(t, r.Current())
	assert.Equal(t, []string{"a", "a", "a", "b", "b", "b"}, seen)

	results := r.Results()
	require.Len(t, results, 2)
	assert.Same(t, a, results[0].Engine)
	for i, res := range results[1].Results {
		assert.Equal(t, i, res.Index)
		assert.True(t, res.Failed())
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner([]*domain.NamedEngine{named("a", &countingEngine{okCalls: -1})}, []domain.Case{positive}, Options{})
	r.Run(ctx)

	results := r.Results()
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Results)
}
