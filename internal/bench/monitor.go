package bench

import (
	"context"
	"time"

	"github.com/dontdude/regexbench/internal/domain"
)

// DefaultPollInterval is how often the monitor samples the runner.
const DefaultPollInterval = 200 * time.Millisecond

// JobSource is the view of a Runner the monitor needs.
type JobSource interface {
	Current() *Job
	CaseCount() int
	Done() <-chan struct{}
}

// Monitor turns snapshots of the in-flight job into progress events. It
// only reads published jobs and never touches sample buffers.
type Monitor struct {
	src      JobSource
	runID    string
	sinks    []domain.ProgressSink
	interval time.Duration
	last     *Job
}

// NewMonitor returns a monitor forwarding events to sinks.
func NewMonitor(src JobSource, runID string, sinks ...domain.ProgressSink) *Monitor {
	return &Monitor{src: src, runID: runID, sinks: sinks, interval: DefaultPollInterval}
}

// Poll compares the current job with the one seen on the previous poll. It
// reports the previous engine as done or failed when the engine changed,
// then the completion estimate of the job in flight.
func (m *Monitor) Poll(now time.Time) []domain.ProgressEvent {
	cur := m.src.Current()
	last := m.last
	m.last = cur

	var events []domain.ProgressEvent
	if last != nil && (cur == nil || cur.Result.Engine != last.Result.Engine) {
		kind := domain.ProgressEngineDone
		if last.EngineFailed() {
			kind = domain.ProgressEngineFailed
		}
		events = append(events, domain.ProgressEvent{
			RunID:   m.runID,
			Kind:    kind,
			Engine:  last.Result.Engine.Name,
			Percent: 100,
			Time:    now,
		})
	}
	if cur != nil {
		events = append(events, domain.ProgressEvent{
			RunID:   m.runID,
			Kind:    domain.ProgressRunning,
			Engine:  cur.Result.Engine.Name,
			Percent: Percent(cur, m.src.CaseCount(), now) * 100,
			Time:    now,
		})
	}
	return events
}

// Percent estimates the completed fraction of an engine's cases. The
// in-flight case counts by elapsed time over its budget, or over the
// elapsed time itself once the budget is overrun, so the estimate never
// passes the next case boundary.
func Percent(job *Job, caseCount int, now time.Time) float64 {
	if caseCount <= 0 {
		return 0
	}
	elapsed := max(now.Sub(job.Start), 0)
	total := max(job.Deadline.Sub(job.Start), elapsed)
	fraction := 0.0
	if total > 0 {
		fraction = float64(elapsed) / float64(total)
	}
	return (float64(job.Result.Index) + fraction) / float64(caseCount)
}

// Run polls until the source is done, then emits a final poll and a
// finished event.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.emit(m.Poll(time.Now()))
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.src.Done():
			now := time.Now()
			m.emit(m.Poll(now))
			m.emit([]domain.ProgressEvent{{RunID: m.runID, Kind: domain.ProgressFinished, Percent: 100, Time: now}})
			return
		case <-ticker.C:
			m.emit(m.Poll(time.Now()))
		}
	}
}

func (m *Monitor) emit(events []domain.ProgressEvent) {
	for _, ev := range events {
		for _, s := range m.sinks {
			s.Progress(ev)
		}
	}
}
