package bench

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontdude/regexbench/internal/domain"
)

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Statistics{}, Compute(make([]time.Duration, 8), 0))
	assert.Equal(t, Statistics{}, Compute(nil, 0))
}

func TestComputeSingleSample(t *testing.T) {
	s := Compute([]time.Duration{42, 7, 7}, 1)
	assert.Equal(t, Statistics{Min: 42, Max: 42, Mean: 42, StdDev: 0}, s)
}

func TestComputeIgnoresUntouchedSlots(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 0, 0, 1_000_000}
	s := Compute(samples, 4)
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(4), s.Max)
	assert.Equal(t, time.Duration(2), s.Mean, "mean truncates 2.5")
	// deviations from 2: -1 0 1 2, squares 6, 6/3 = 2, sqrt 1.41
	assert.Equal(t, time.Duration(1), s.StdDev)
}

func TestComputeBesselCorrection(t *testing.T) {
	s := Compute([]time.Duration{10, 20}, 2)
	// deviations -5 5, squares 50, 50/1, sqrt 7.07
	assert.Equal(t, time.Duration(15), s.Mean)
	assert.Equal(t, time.Duration(7), s.StdDev)

	s = Compute([]time.Duration{100, 100, 100}, 3)
	assert.Zero(t, s.StdDev)
}

func TestComputeRejectsOverlongCount(t *testing.T) {
	assert.Panics(t, func() { Compute(make([]time.Duration, 2), 3) })
}

func finishedResult(samples []time.Duration, count int) *Result {
	r := newResult(&domain.NamedEngine{Name: "e"}, domain.Case{}, 0)
	r.finish(samples, count, nil)
	return r
}

func TestStatisticsComputedOnce(t *testing.T) {
	r := finishedResult([]time.Duration{5, 9, 1}, 3)

	first := r.Statistics()
	assert.Nil(t, r.samples.Load(), "buffer is released")
	assert.Equal(t, first, r.Statistics())
	assert.Equal(t, Statistics{Min: 1, Max: 9, Mean: 5, StdDev: 4}, first)
}

func TestStatisticsConcurrentCallersConverge(t *testing.T) {
	r := finishedResult([]time.Duration{3, 1, 4, 1, 5, 9, 2, 6}, 8)

	var wg sync.WaitGroup
	got := make([]Statistics, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.Statistics()
		}()
	}
	wg.Wait()
	for _, s := range got[1:] {
		require.Equal(t, got[0], s)
	}
}

func TestStatisticsBeforeFinishIsNotCached(t *testing.T) {
	r := newResult(&domain.NamedEngine{Name: "e"}, domain.Case{}, 0)
	assert.Equal(t, Statistics{}, r.Statistics())

	r.finish([]time.Duration{8}, 1, nil)
	assert.Equal(t, time.Duration(8), r.Statistics().Mean)
}

func TestRecordCarriesFailure(t *testing.T) {
	engine := &domain.NamedEngine{Name: "e"}
	r := newResult(engine, domain.Case{Pattern: []byte("a"), Input: []byte("b"), Benchmark: true}, 3)
	r.finish([]time.Duration{10, 20}, 2, &Failure{Iteration: 2, Err: ErrMismatch})

	rec := r.Record("run-1")
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "e", rec.Engine)
	assert.Equal(t, 3, rec.CaseIndex)
	assert.True(t, rec.Failed)
	assert.Equal(t, 2, rec.FailedIteration)
	assert.Equal(t, 2, rec.Iterations)
	assert.Equal(t, time.Duration(15), rec.Mean)
	assert.Equal(t, "regex=a,input=b,benchmark,negative", rec.Case)
}
