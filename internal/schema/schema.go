// Package schema holds the HCL-tagged struct definitions for plan files and
// module manifests. These structs mirror the wire format exactly; the hcl
// package translates them into the agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Plan Structures ---

// StepArgs represents the content of the 'arguments' block within a step.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Step represents a `step` block from a user's plan file. It is a runnable
// instance of a defined runner.
type Step struct {
	RunnerType  string    `hcl:"runner_type,label"`
	Name        string    `hcl:"instance_name,label"`
	Description string    `hcl:"description,optional"`
	Arguments   *StepArgs `hcl:"arguments,block"`
	DependsOn   []string  `hcl:"depends_on,optional"`
	Resources   []string  `hcl:"resources,optional"`
	Estimate    string    `hcl:"estimate,optional"`
}

// Settings represents the optional `settings` block of a plan file.
type Settings struct {
	Workers    int  `hcl:"workers,optional"`
	StrictDeps bool `hcl:"strict_deps,optional"`
}

// --- Module Manifest Schemas ---

// Lifecycle defines the mapping from a runner's lifecycle event to a
// registered Go handler function.
type Lifecycle struct {
	OnRun string `hcl:"on_run,optional"`
}

// InputDefinition defines a single input variable for a runner.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// OutputDefinition defines a single output value produced by a runner.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// RunnerDefinition represents the HCL manifest for a runnable `runner` type.
type RunnerDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// File represents the top-level structure of any stepwave HCL file. Plan
// blocks and runner manifests may share a file, though by convention
// manifests live under the modules directory.
type File struct {
	Settings *Settings           `hcl:"settings,block"`
	Steps    []*Step             `hcl:"step,block"`
	Runners  []*RunnerDefinition `hcl:"runner,block"`
	Body     hcl.Body            `hcl:",remain"`
}
