package metrics

import "time"

// OutcomeLabel enumerates compile result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// TriggerLabel distinguishes what started a compile.
type TriggerLabel string

const (
	TriggerManual    TriggerLabel = "manual"
	TriggerInitial   TriggerLabel = "initial"
	TriggerChange    TriggerLabel = "change"
	TriggerScheduled TriggerLabel = "scheduled"
)

// Recorder defines observability hooks for compile metrics. Implementations
// may forward to Prometheus etc. All methods must be safe on nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveCompileDuration(d time.Duration)
	IncCompileOutcome(outcome OutcomeLabel, trigger TriggerLabel)
	SetWatchedFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCompileDuration(time.Duration)       {}
func (NoopRecorder) IncCompileOutcome(OutcomeLabel, TriggerLabel) {}
func (NoopRecorder) SetWatchedFiles(int)                        {}
