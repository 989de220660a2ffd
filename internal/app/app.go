package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/metrics"
	"github.com/vk/stepwave/internal/registry"
	"github.com/vk/stepwave/internal/resource"
	"github.com/vk/stepwave/internal/scheduler"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	config    *config.Model
	converter config.Converter
	sched     *scheduler.Scheduler
	evalCtx   *hcl.EvalContext
	promReg   *prom.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry,
// lock registry and scheduler.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge all configuration paths into a single collection for the loader.
	var configPaths []string
	if appConfig.PlanPath != "" {
		configPaths = append(configPaths, appConfig.PlanPath)
	}
	if appConfig.ModulesPath != "" {
		configPaths = append(configPaths, appConfig.ModulesPath)
	}

	// Load all configuration into the format-agnostic model first.
	cfgModel, converter, err := loader.Load(ctx, configPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	// Create and populate the registry with Go handlers.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	reg.PopulateDefinitionsFromModel(cfgModel)
	logger.Debug("Registry definitions populated from config model.")

	// A mismatch between code and manifests is a programmer error, so we panic.
	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	opts := scheduler.Options{Workers: appConfig.WorkerCount}
	if settings := cfgModel.Plan.Settings; settings != nil {
		if settings.Workers > 0 {
			opts.Workers = settings.Workers
		}
		opts.StrictDeps = settings.StrictDeps
	}
	sched := scheduler.New(resource.NewManager(), opts)

	promReg := prom.NewRegistry()
	if err := metrics.NewExporter("stepwave", sched).Register(promReg); err != nil {
		panic(fmt.Errorf("failed to register metrics exporter: %w", err))
	}

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		config:    cfgModel,
		converter: converter,
		sched:     sched,
		evalCtx:   buildEvalContext(),
		promReg:   promReg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Scheduler returns the application's scheduler. This is primarily for
// testing and statistics inspection.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.sched
}

// buildEvalContext constructs the evaluation context for plan argument
// expressions. Plans can reference process environment variables via
// `env.NAME`; step outputs are deliberately not addressable, since the
// scheduler treats runner payloads as opaque.
func buildEvalContext() *hcl.EvalContext {
	envMap := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok && k != "" {
			envMap[k] = cty.StringVal(v)
		}
	}
	envVal := cty.MapValEmpty(cty.String)
	if len(envMap) > 0 {
		envVal = cty.MapVal(envMap)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
	}
}
