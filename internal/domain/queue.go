package domain

import (
	"context"
	"time"
)

// ProgressKind distinguishes progress events.
type ProgressKind string

const (
	ProgressRunning      ProgressKind = "running"
	ProgressEngineDone   ProgressKind = "engine_done"
	ProgressEngineFailed ProgressKind = "engine_failed"
	ProgressFinished     ProgressKind = "finished"
)

// ProgressEvent is a live benchmark progress update.
type ProgressEvent struct {
	RunID   string       `json:"run_id"`
	Kind    ProgressKind `json:"kind"`
	Engine  string       `json:"engine,omitempty"`
	Percent float64      `json:"percent"`
	Time    time.Time    `json:"time"`
}

// ProgressSink receives progress events from the monitor goroutine.
type ProgressSink interface {
	Progress(event ProgressEvent)
}

// ResultRecord is the flattened outcome of one (engine, case) benchmark.
type ResultRecord struct {
	RunID           string        `json:"run_id"`
	Engine          string        `json:"engine"`
	CaseIndex       int           `json:"case_index"`
	Case            string        `json:"case"`
	WindowSize      int           `json:"window_size,omitempty"`
	Expected        bool          `json:"expected"`
	Iterations      int           `json:"iterations"`
	Failed          bool          `json:"failed"`
	FailedIteration int           `json:"failed_iteration,omitempty"`
	Min             time.Duration `json:"min_ns"`
	Max             time.Duration `json:"max_ns"`
	Mean            time.Duration `json:"mean_ns"`
	StdDev          time.Duration `json:"stddev_ns"`

	// RawID is the broker message id, set by consumers for acknowledgement.
	RawID string `json:"-"`
}

// ResultPublisher ships benchmark results and progress to an external
// broker so that other processes can follow a run.
type ResultPublisher interface {
	ProgressSink

	// PublishResult appends one benchmark outcome to the result stream.
	PublishResult(ctx context.Context, record ResultRecord) error

	// SubscribeResults streams records through a consumer group.
	SubscribeResults(ctx context.Context) (<-chan ResultRecord, error)

	// Acknowledge confirms a record returned by SubscribeResults.
	Acknowledge(ctx context.Context, rawID string) error

	// SubscribeProgress streams progress events from all running harnesses.
	SubscribeProgress(ctx context.Context) (<-chan ProgressEvent, error)
}
