package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/fsutil"
	"github.com/vk/stepwave/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers every .hcl file under the given paths, parses them, and
// merges their contents into a single format-agnostic model. Plan blocks
// (settings, step) and runner manifests may be spread across any number of
// files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover HCL files under %s: %w", p, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))
	if len(files) == 0 {
		logger.Warn("No .hcl files found in the provided paths.", "paths", paths)
	}

	model := &config.Model{
		Runners: make(map[string]*config.RunnerDefinition),
		Plan:    &config.Plan{},
	}

	parser := hclparse.NewParser()
	for _, path := range files {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		var f schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}

		if err := l.mergeFile(ctx, model, &f, path); err != nil {
			return nil, nil, err
		}
		logger.Debug("Loaded definitions from HCL file.", "file", path)
	}

	return model, NewConverter(), nil
}

// mergeFile folds one parsed file into the accumulated model.
func (l *Loader) mergeFile(ctx context.Context, model *config.Model, f *schema.File, path string) error {
	logger := ctxlog.FromContext(ctx)

	if f.Settings != nil {
		if model.Plan.Settings != nil {
			logger.Warn("Duplicate settings block found, it will be overwritten.", "file", path)
		}
		model.Plan.Settings = &config.Settings{
			Workers:    f.Settings.Workers,
			StrictDeps: f.Settings.StrictDeps,
		}
	}

	for _, s := range f.Steps {
		step, err := l.translateStep(s)
		if err != nil {
			return fmt.Errorf("in %s: %w", path, err)
		}
		model.Plan.Steps = append(model.Plan.Steps, step)
	}

	for _, r := range f.Runners {
		if _, exists := model.Runners[r.Type]; exists {
			return fmt.Errorf("in %s: runner type %q defined more than once", path, r.Type)
		}
		def, err := l.translateRunnerDefinition(ctx, r)
		if err != nil {
			return fmt.Errorf("in %s: %w", path, err)
		}
		model.Runners[r.Type] = def
	}

	return nil
}
