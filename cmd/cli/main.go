package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/stepwave/internal/app"
	"github.com/vk/stepwave/internal/cli"
	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/hcl"
	"github.com/vk/stepwave/internal/yamlplan"
)

// main is the entrypoint for the stepwave application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors; surface that as a regular
	// error so main can exit cleanly.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	stepwaveApp := app.NewApp(outW, appConfig, loaderFor(appConfig.PlanPath))

	return stepwaveApp.Run(context.Background(), appConfig)
}

// loaderFor picks the plan front-end from the path: YAML plans get the
// YAML loader wrapped around the HCL one (manifests stay HCL either way).
func loaderFor(planPath string) config.Loader {
	lower := strings.ToLower(planPath)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return yamlplan.NewLoader(hcl.NewLoader())
	}
	return hcl.NewLoader()
}
