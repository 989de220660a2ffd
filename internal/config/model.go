package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration: all runner manifests plus the execution plan.
type Model struct {
	Runners map[string]*RunnerDefinition
	Plan    *Plan
}

// Plan represents the user's execution plan definition.
type Plan struct {
	Settings *Settings
	Steps    []*Step
}

// Settings holds plan-level knobs from the `settings` block.
type Settings struct {
	// Workers bounds intra-wave parallelism. Zero means "use the CLI value".
	Workers int
	// StrictDeps upgrades dangling dependency references from a warning to
	// a build error.
	StrictDeps bool
}

// Step is the format-agnostic representation of a `step` block. Steps are
// immutable once loaded; the scheduler never mutates them.
type Step struct {
	RunnerType  string
	Name        string
	Description string
	Arguments   map[string]hcl.Expression
	// DependsOn lists step identifiers (runner.name) that must reach a
	// terminal status before this step may start.
	DependsOn []string
	// Resources lists identifiers this step needs exclusive access to while
	// it runs. Anything that looks like a path counts as a file resource,
	// everything else as a logical one; locking treats both identically.
	Resources []string
	// Estimate is an informational duration hint. It never affects
	// scheduling.
	Estimate time.Duration
}

// ID returns the step's unique identifier, matching the address form used
// in depends_on references.
func (s *Step) ID() string {
	return s.RunnerType + "." + s.Name
}

// --- Module Manifest Models ---

// RunnerDefinition is the format-agnostic representation of a runner's manifest.
type RunnerDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a runner's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// InputDefinition defines a single input argument for a runner.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value from a runner.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}
