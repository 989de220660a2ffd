// Package print provides the 'print' runner: it writes its arguments to
// stdout. Mostly useful as a plan smoke test.
package print

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print runner.
type Input struct {
	Values map[string]string `hcl:"values"`
}

// OnRunPrint is the handler for the 'print' runner's on_run lifecycle event.
func OnRunPrint(ctx context.Context, input *Input) (any, error) {
	ctxlog.FromContext(ctx).Info("Printing input")

	if len(input.Values) == 0 {
		fmt.Println("      (empty)")
		return nil, nil
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(input.Values))
	for k := range input.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("      %s = %q\n", k, input.Values[k])
	}

	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunPrint", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunPrint,
	})
}
