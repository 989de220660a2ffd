package scheduler

import (
	"context"
	"time"

	"github.com/vk/stepwave/internal/config"
)

// Status describes a step's position in its lifecycle.
type Status int

const (
	Pending Status = iota
	Running
	Completed
	Failed
	Skipped
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether a step in this status will transition no further.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed || s == Skipped
}

// StepResult records the outcome of one step within one run. Exactly one
// StepResult is produced per valid input step of an Execute call.
type StepResult struct {
	// ID matches the step's identifier.
	ID string
	// RunID ties the result to the Execute call that produced it.
	RunID  string
	Status Status
	// Output is the opaque payload the runner returned. The scheduler never
	// interprets it.
	Output any
	// Error holds the failure description. Populated for Failed results only.
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the step ran.
func (r StepResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Successful reports whether the step completed.
func (r StepResult) Successful() bool {
	return r.Status == Completed
}

// Runner executes a single step. It may return an arbitrary output value,
// which is wrapped into a Completed result, or a *StepResult, which is
// adopted as-is after its identifier and timestamps are normalized. Errors
// and panics both become Failed results and never abort the run.
type Runner func(ctx context.Context, step *config.Step) (any, error)
