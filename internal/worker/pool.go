package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dontdude/regexbench/internal/domain"
)

// Pool runs compile jobs on a fixed number of goroutines.
// Native compilation is CPU and memory heavy, so the pool bounds how many
// compiler processes run at once.
type Pool struct {
	// workerCount determines how many compilers can run concurrently.
	workerCount int
	// tasksCh is the queue for incoming jobs.
	tasksCh chan domain.CompileJob
	// wg tracks active workers to ensure graceful shutdown.
	wg      sync.WaitGroup
	builder domain.PatternBuilder
}

// NewPool initializes the worker pool with a fixed concurrency limit.
func NewPool(concurrency int, builder domain.PatternBuilder) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		workerCount: concurrency,
		tasksCh:     make(chan domain.CompileJob, concurrency),
		builder:     builder,
	}
}

// Start spawns the fixed number of worker goroutines.
// It returns immediately.
func (p *Pool) Start(ctx context.Context) {
	slog.Debug("Starting compile pool", "concurrency", p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the job queue and blocks until every worker has finished its
// current job and exited.
func (p *Pool) Stop() {
	close(p.tasksCh)
	p.wg.Wait()
	slog.Debug("Compile pool stopped")
}

// Submit adds a job to the queue.
// It blocks if the queue (and workers) are fully saturated.
func (p *Pool) Submit(job domain.CompileJob) {
	p.tasksCh <- job
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.tasksCh {
		slog.Debug("Processing compile job", "workerId", id, "jobID", job.ID)

		var err error
		if err = ctx.Err(); err == nil {
			err = p.build(ctx, job.Pattern)
		}
		job.ResultCh <- domain.CompileResult{ID: job.ID, Err: err}
	}
}

// build shields the pool from a panicking builder.
func (p *Pool) build(ctx context.Context, pattern []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("builder panicked: %v", r)
		}
	}()
	return p.builder.Build(ctx, pattern)
}

// RunAll pushes every pattern through a pool of the given size and returns
// one result per pattern, indexed like patterns.
func RunAll(ctx context.Context, concurrency int, builder domain.PatternBuilder, patterns [][]byte) []error {
	pool := NewPool(concurrency, builder)
	pool.Start(ctx)

	results := make(chan domain.CompileResult, len(patterns))
	go func() {
		for i, pattern := range patterns {
			pool.Submit(domain.CompileJob{ID: i, Pattern: pattern, ResultCh: results})
		}
		pool.Stop()
	}()

	errs := make([]error, len(patterns))
	for range patterns {
		r := <-results
		errs[r.ID] = r.Err
	}
	return errs
}
