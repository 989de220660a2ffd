// Package env_vars provides the 'env_vars' runner: it returns the process
// environment as its output payload.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/stepwave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunEnvVars is the handler for the 'env_vars' runner.
func OnRunEnvVars(ctx context.Context, _ *struct{}) (any, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	return envMap, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunEnvVars", &registry.RegisteredRunner{
		// No 'arguments' block.
		NewInput:  nil,
		InputType: nil,
		Fn:        OnRunEnvVars,
	})
}
