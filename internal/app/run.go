package app

import (
	"context"
	"fmt"

	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/scheduler"
)

// Run executes the loaded plan based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.HTTPPort > 0 {
		a.startStatusServer(appConfig.HTTPPort)
	}

	steps := a.config.Plan.Steps
	if len(steps) == 0 {
		a.logger.Warn("No steps found in plan, execution not required.")
		return nil
	}

	a.logger.Info("Step handlers registered:", "count", len(a.registry.HandlerRegistry))

	results, err := a.sched.Execute(ctx, steps, a.dispatchStep)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	failed := 0
	for _, r := range results {
		switch r.Status {
		case scheduler.Failed:
			failed++
			a.logger.Error("Step failed.", "step", r.ID, "error", r.Error, "duration", r.Duration())
		case scheduler.Skipped:
			a.logger.Warn("Step skipped.", "step", r.ID)
		default:
			a.logger.Info("Step completed.", "step", r.ID, "duration", r.Duration())
		}
	}

	stats := a.sched.Statistics()
	a.logger.Info("Run summary.",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"success_rate", fmt.Sprintf("%.2f", stats.SuccessRate),
		"total_duration", stats.TotalDuration,
		"locked_resources", stats.Locks.Total,
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
