// Package yamlplan provides a YAML front-end for plan files. It produces
// the same format-agnostic config model as the HCL loader by wrapping
// decoded YAML values in static HCL expressions, so the rest of the engine
// is format-blind. Runner manifests remain HCL and are delegated to the
// wrapped loader.
package yamlplan

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Loader reads .yaml/.yml plan files and delegates everything else to the
// inner HCL loader.
type Loader struct {
	inner config.Loader
}

// NewLoader creates a YAML plan loader around the given manifest loader.
func NewLoader(inner config.Loader) *Loader {
	return &Loader{inner: inner}
}

// planFile mirrors the YAML plan document structure.
type planFile struct {
	Settings *settingsNode `yaml:"settings"`
	Steps    []*stepNode   `yaml:"steps"`
}

type settingsNode struct {
	Workers    int  `yaml:"workers"`
	StrictDeps bool `yaml:"strict_deps"`
}

type stepNode struct {
	Runner      string         `yaml:"runner"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	DependsOn   []string       `yaml:"depends_on"`
	Resources   []string       `yaml:"resources"`
	Estimate    string         `yaml:"estimate"`
	Arguments   map[string]any `yaml:"arguments"`
}

// Load merges YAML plan files found under the given paths into the model
// produced by the inner loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	model, converter, err := l.inner.Load(ctx, paths...)
	if err != nil {
		return nil, nil, err
	}

	var files []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".yaml", ".yml")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover YAML files under %s: %w", p, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered YAML plan files.", "count", len(files))

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read YAML plan %s: %w", path, err)
		}
		var pf planFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, nil, fmt.Errorf("failed to parse YAML plan %s: %w", path, err)
		}
		if err := mergePlanFile(ctx, model, &pf, path); err != nil {
			return nil, nil, err
		}
		logger.Debug("Loaded plan from YAML file.", "file", path)
	}

	return model, converter, nil
}

// mergePlanFile folds one YAML plan document into the accumulated model.
func mergePlanFile(ctx context.Context, model *config.Model, pf *planFile, path string) error {
	logger := ctxlog.FromContext(ctx)

	if pf.Settings != nil {
		if model.Plan.Settings != nil {
			logger.Warn("Duplicate settings block found, it will be overwritten.", "file", path)
		}
		model.Plan.Settings = &config.Settings{
			Workers:    pf.Settings.Workers,
			StrictDeps: pf.Settings.StrictDeps,
		}
	}

	for _, s := range pf.Steps {
		if s.Runner == "" || s.Name == "" {
			return fmt.Errorf("in %s: every step needs both 'runner' and 'name'", path)
		}

		var estimate time.Duration
		if s.Estimate != "" {
			parsed, err := time.ParseDuration(s.Estimate)
			if err != nil {
				return fmt.Errorf("in %s: step '%s.%s': invalid estimate %q: %w", path, s.Runner, s.Name, s.Estimate, err)
			}
			estimate = parsed
		}

		args := make(map[string]hcl.Expression, len(s.Arguments))
		for name, raw := range s.Arguments {
			val, err := toCtyValue(raw)
			if err != nil {
				return fmt.Errorf("in %s: step '%s.%s', argument %q: %w", path, s.Runner, s.Name, name, err)
			}
			args[name] = hcl.StaticExpr(val, hcl.Range{Filename: path})
		}

		model.Plan.Steps = append(model.Plan.Steps, &config.Step{
			RunnerType:  s.Runner,
			Name:        s.Name,
			Description: s.Description,
			Arguments:   args,
			DependsOn:   s.DependsOn,
			Resources:   s.Resources,
			Estimate:    estimate,
		})
	}

	return nil
}

// toCtyValue converts a decoded YAML value into a cty.Value. Mappings become
// objects and sequences become tuples so mixed element types survive.
func toCtyValue(raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		// Deterministic iteration keeps error messages stable.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			inner, err := toCtyValue(v[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = inner
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v))
		for i, e := range v {
			inner, err := toCtyValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			elems = append(elems, inner)
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported YAML value type %T", raw)
	}
}
