// Package shell provides the 'shell' runner: it executes a command line
// through `sh -c` and captures its output.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"reflect"
	"strings"

	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the shell runner.
type Input struct {
	Command string `hcl:"command"`
	Workdir string `hcl:"workdir,optional"`
}

// Output is the result payload of a shell step.
type Output struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// OnRunShell is the handler for the 'shell' runner's on_run lifecycle event.
func OnRunShell(ctx context.Context, input *Input) (any, error) {
	log := ctxlog.FromContext(ctx)

	if strings.TrimSpace(input.Command) == "" {
		return nil, fmt.Errorf("shell runner requires a non-empty command")
	}

	log.Info("Executing shell command", "command", input.Command)

	cmd := exec.CommandContext(ctx, "sh", "-c", input.Command)
	if input.Workdir != "" {
		cmd.Dir = input.Workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := &Output{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		output.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() != nil {
			return output, fmt.Errorf("shell command interrupted: %w", ctx.Err())
		}
		return output, fmt.Errorf("shell command failed with exit code %d: %w", output.ExitCode, err)
	}

	log.Debug("Shell command finished", "exit_code", output.ExitCode)
	return output, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunShell", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunShell,
	})
}
