package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/dag"
	"github.com/vk/stepwave/internal/resource"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker budget used when Options leaves it unset.
const DefaultWorkers = 3

// Options configures a Scheduler instance.
type Options struct {
	// Workers bounds how many steps of one wave run concurrently.
	Workers int
	// StrictDeps rejects plans whose steps reference unknown dependencies
	// instead of dropping the reference with a warning.
	StrictDeps bool
}

// Scheduler executes step lists wave by wave. It owns its result history
// and shares one resource.Manager across every run for its lifetime, so
// two steps naming the same resource exclude each other even across runs.
type Scheduler struct {
	resources *resource.Manager
	workers   int
	strict    bool

	mu      sync.Mutex
	history []StepResult
	runs    int
}

// New creates a Scheduler around the given lock registry. A nil manager
// gets replaced with a fresh one.
func New(resources *resource.Manager, opts Options) *Scheduler {
	if resources == nil {
		resources = resource.NewManager()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{
		resources: resources,
		workers:   workers,
		strict:    opts.StrictDeps,
	}
}

// Resources exposes the lock registry, mainly for statistics and tests.
func (s *Scheduler) Resources() *resource.Manager {
	return s.resources
}

// Execute runs every step once, respecting dependencies and resource
// locks, and returns one result per valid input step in wave order.
//
// A cyclic dependency graph fails the whole call before any step runs.
// Per-step failures are captured into results and never abort the run.
// Cancelling the context stops the run at the next wave boundary; steps
// that never started are reported as Skipped.
func (s *Scheduler) Execute(ctx context.Context, steps []*config.Step, runner Runner) ([]StepResult, error) {
	logger := ctxlog.FromContext(ctx)

	graph, err := dag.Build(ctx, steps, s.strict)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}

	waves, err := graph.Waves()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("🚀 Starting wave execution.", "steps", len(graph.Steps()), "waves", len(waves), "workers", s.workers)

	results := make([]StepResult, 0, len(graph.Steps()))
	for i, wave := range waves {
		if ctx.Err() != nil {
			logger.Warn("Run cancelled, skipping remaining waves.", "wave", i, "error", ctx.Err())
			for _, w := range waves[i:] {
				for _, st := range w {
					results = append(results, StepResult{ID: st.ID(), RunID: runID, Status: Skipped})
				}
			}
			break
		}

		logger.Debug("Starting wave.", "wave", i, "steps", len(wave))
		if len(wave) == 1 {
			// A single-step wave runs inline; spinning up the pool would be
			// pure overhead.
			results = append(results, s.runStep(ctx, runID, wave[0], runner))
			continue
		}

		// Buffer wave results by position so the returned order stays
		// deterministic even though completion order is not.
		buf := make([]StepResult, len(wave))
		g := new(errgroup.Group)
		g.SetLimit(s.workers)
		for j, st := range wave {
			j, st := j, st
			g.Go(func() error {
				buf[j] = s.runStep(ctx, runID, st, runner)
				return nil
			})
		}
		// The barrier: no step of wave i+1 starts before every step of
		// wave i reached a terminal status.
		_ = g.Wait()
		results = append(results, buf...)
	}

	s.mu.Lock()
	s.history = append(s.history, results...)
	s.runs++
	s.mu.Unlock()

	logger.Info("🏁 Wave execution finished.", "results", len(results))
	return results, nil
}

// runStep executes one step: acquire declared resource locks in declared
// order, invoke the runner, normalize its outcome, and release every
// acquired lock on all exit paths.
func (s *Scheduler) runStep(ctx context.Context, runID string, step *config.Step, runner Runner) StepResult {
	logger := ctxlog.FromContext(ctx).With("step", step.ID())
	res := StepResult{
		ID:        step.ID(),
		RunID:     runID,
		Status:    Running,
		StartedAt: time.Now(),
	}

	// Consistent (declared) acquisition order avoids deadlock when two
	// steps need the same pair of resources. A resource declared twice on
	// one step is acquired once.
	seen := make(map[string]bool, len(step.Resources))
	for _, id := range step.Resources {
		if seen[id] {
			continue
		}
		seen[id] = true
		logger.Debug("Acquiring resource lock.", "resource", id)
		s.resources.Lock(id, step.ID())
		defer s.resources.Unlock(id)
	}

	output, err := invokeRunner(ctx, step, runner)
	res.FinishedAt = time.Now()

	if err != nil {
		logger.Error("Step execution failed.", "error", err)
		res.Status = Failed
		res.Error = err.Error()
		return res
	}

	// A runner may hand back a full StepResult; adopt it after pinning the
	// fields the scheduler owns.
	switch v := output.(type) {
	case *StepResult:
		adopted := *v
		s.normalize(&adopted, res)
		return adopted
	case StepResult:
		s.normalize(&v, res)
		return v
	default:
		res.Status = Completed
		res.Output = output
		logger.Debug("Step execution succeeded.")
		return res
	}
}

// normalize pins scheduler-owned fields on a runner-supplied result.
func (s *Scheduler) normalize(adopted *StepResult, own StepResult) {
	adopted.ID = own.ID
	adopted.RunID = own.RunID
	if adopted.StartedAt.IsZero() {
		adopted.StartedAt = own.StartedAt
	}
	if adopted.FinishedAt.IsZero() {
		adopted.FinishedAt = own.FinishedAt
	}
	if !adopted.Status.Terminal() {
		adopted.Status = Completed
	}
	if adopted.Status != Failed {
		adopted.Error = ""
	}
}

// invokeRunner calls the runner with panic capture so a misbehaving step
// degrades to a Failed result instead of tearing down the run.
func invokeRunner(ctx context.Context, step *config.Step, runner Runner) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runner panicked: %v", r)
		}
	}()
	return runner(ctx, step)
}

// Reset clears the accumulated result history. The resource-lock registry
// is deliberately left intact; locks belong to the instance, not a run.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.runs = 0
}
