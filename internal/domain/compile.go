package domain

import "context"

// CompileJob asks a worker to prepare native code for one pattern.
type CompileJob struct {
	ID       int
	Pattern  []byte
	ResultCh chan<- CompileResult
}

// CompileResult reports the outcome of a CompileJob.
type CompileResult struct {
	ID  int
	Err error
}

// PatternBuilder prepares whatever an engine needs before it can match a
// pattern, such as a compiled shared library.
type PatternBuilder interface {
	Build(ctx context.Context, pattern []byte) error
}
