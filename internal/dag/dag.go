package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
)

// ErrCycle is returned when the dependency graph contains a cycle. No step
// runs when validation fails.
var ErrCycle = errors.New("cyclic dependency detected")

// ErrInconsistent is returned when wave computation can make no progress
// while steps remain. It indicates an internal invariant violation and
// should be unreachable after a successful Validate.
var ErrInconsistent = errors.New("scheduling inconsistency: no eligible step")

// ErrStrictDeps is returned in strict mode when a step references a
// dependency that does not exist in the plan.
var ErrStrictDeps = errors.New("dependency reference to unknown step")

// Graph is a validated-on-demand dependency graph over a plan's steps.
// Steps keep their declaration order, which waves use as a tie-break so
// layering is deterministic.
type Graph struct {
	steps []*config.Step
	// edges maps a step ID to the IDs of the valid steps it depends on.
	edges map[string][]string
}

// Build converts a step list into an adjacency map. A dependency naming a
// step that was not supplied is dropped with a warning, or rejected when
// strict is set. A duplicate step identifier overwrites the earlier step,
// with a warning, matching how later plan files shadow earlier ones.
func Build(ctx context.Context, steps []*config.Step, strict bool) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "step_count", len(steps))

	known := make(map[string]*config.Step, len(steps))
	ordered := make([]*config.Step, 0, len(steps))
	for _, s := range steps {
		id := s.ID()
		if _, exists := known[id]; exists {
			logger.Warn("Duplicate step definition found, it will be overwritten.", "id", id)
			for i, prev := range ordered {
				if prev.ID() == id {
					ordered = append(ordered[:i], ordered[i+1:]...)
					break
				}
			}
		}
		known[id] = s
		ordered = append(ordered, s)
	}

	g := &Graph{
		steps: ordered,
		edges: make(map[string][]string, len(ordered)),
	}

	for _, s := range ordered {
		id := s.ID()
		deps := make([]string, 0, len(s.DependsOn))
		for _, dep := range s.DependsOn {
			if _, ok := known[dep]; !ok {
				if strict {
					return nil, fmt.Errorf("%w: step '%s' depends on '%s'", ErrStrictDeps, id, dep)
				}
				logger.Warn("Dropping dependency on unknown step.", "step", id, "dependency", dep)
				continue
			}
			deps = append(deps, dep)
		}
		g.edges[id] = deps
	}

	logger.Debug("Build: graph construction complete.", "node_count", len(g.edges))
	return g, nil
}

// Steps returns the graph's steps in declaration order.
func (g *Graph) Steps() []*config.Step {
	return g.steps
}

// Dependencies returns the valid dependency identifiers of the given step.
func (g *Graph) Dependencies(id string) []string {
	return g.edges[id]
}

// Validate checks the graph for cycles using depth-first search with three
// node colors: unvisited, in-progress and done. Revisiting an in-progress
// node means the current path loops back on itself.
func (g *Graph) Validate() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	color := make(map[string]int, len(g.edges))

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case done:
			return nil
		case inProgress:
			return fmt.Errorf("%w: involving step '%s'", ErrCycle, id)
		}

		color[id] = inProgress
		for _, dep := range g.edges[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[id] = done
		return nil
	}

	// Iterate declaration order so the reported cycle member is stable.
	for _, s := range g.steps {
		if color[s.ID()] == unvisited {
			if err := visit(s.ID()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Waves computes the execution layering: each wave holds every step whose
// dependencies were all emitted in earlier waves, in declaration order.
// The result is a pure function of the graph, so repeated calls return the
// same group sequence.
//
// If no step is selectable while steps remain the graph was not validated
// (or validation is broken); that is reported as ErrInconsistent rather
// than looping forever.
func (g *Graph) Waves() ([][]*config.Step, error) {
	scheduled := make(map[string]bool, len(g.steps))
	var waves [][]*config.Step

	for len(scheduled) < len(g.steps) {
		var wave []*config.Step
		for _, s := range g.steps {
			if scheduled[s.ID()] {
				continue
			}
			ready := true
			for _, dep := range g.edges[s.ID()] {
				if !scheduled[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, s)
			}
		}

		if len(wave) == 0 {
			remaining := len(g.steps) - len(scheduled)
			return nil, fmt.Errorf("%w: %d step(s) remain unschedulable", ErrInconsistent, remaining)
		}

		// Mark after the full pass so same-wave steps never satisfy each
		// other's dependencies.
		for _, s := range wave {
			scheduled[s.ID()] = true
		}
		waves = append(waves, wave)
	}

	return waves, nil
}
