// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateStep converts the HCL-specific step schema into the agnostic model.
func (l *Loader) translateStep(s *schema.Step) (*config.Step, error) {
	var estimate time.Duration
	if s.Estimate != "" {
		parsed, err := time.ParseDuration(s.Estimate)
		if err != nil {
			return nil, fmt.Errorf("step '%s.%s': invalid estimate %q: %w", s.RunnerType, s.Name, s.Estimate, err)
		}
		estimate = parsed
	}

	return &config.Step{
		RunnerType:  s.RunnerType,
		Name:        s.Name,
		Description: s.Description,
		Arguments:   l.extractBodyAttributes(s.Arguments),
		DependsOn:   s.DependsOn,
		Resources:   s.Resources,
		Estimate:    estimate,
	}, nil
}

// translateRunnerDefinition converts the HCL-specific runner schema into the
// agnostic model, parsing input/output type expressions into cty types.
func (l *Loader) translateRunnerDefinition(ctx context.Context, s *schema.RunnerDefinition) (*config.RunnerDefinition, error) {
	r := &config.RunnerDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		r.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}

	for _, in := range s.Inputs {
		parsedType, err := typeExprToCtyType(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("in runner '%s', input '%s': %w", s.Type, in.Name, err)
		}

		// A default is only usable when it decoded to a non-null value.
		var defaultVal *cty.Value
		if in.Default != nil && !in.Default.IsNull() {
			defaultVal = in.Default
		}

		r.Inputs[in.Name] = &config.InputDefinition{
			Name:        in.Name,
			Type:        parsedType,
			Description: in.Description,
			Default:     defaultVal,
			Optional:    defaultVal != nil,
		}
	}

	for _, out := range s.Outputs {
		parsedType, err := typeExprToCtyType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in runner '%s', output '%s': %w", s.Type, out.Name, err)
		}
		r.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        parsedType,
			Description: out.Description,
		}
	}

	return r, nil
}

// extractBodyAttributes pulls the attribute expressions out of an arguments
// block without evaluating them.
func (l *Loader) extractBodyAttributes(block *schema.StepArgs) map[string]hcl.Expression {
	args := make(map[string]hcl.Expression)
	if block == nil || block.Body == nil {
		return args
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return args
	}
	for name, attr := range attrs {
		args[name] = attr.Expr
	}
	return args
}
