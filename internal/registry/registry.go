package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/stepwave/internal/config"
)

// RegisteredRunner holds the compiled Go parts of a runner's lifecycle
// function. Fn must have the shape
// func(ctx context.Context, input *T) (any, error); NewInput returns a
// *T for the converter to populate, or nil when the runner takes no
// arguments.
type RegisteredRunner struct {
	NewInput  func() any
	InputType reflect.Type
	Fn        any
}

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered handlers and definitions for a single
// application instance.
type Registry struct {
	HandlerRegistry    map[string]*RegisteredRunner
	DefinitionRegistry map[string]*config.RunnerDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]*RegisteredRunner),
		DefinitionRegistry: make(map[string]*config.RunnerDefinition),
	}
}

// RegisterRunner registers a Go function for a runner's lifecycle event.
// Registering the same name twice is a programmer error and panics.
func (r *Registry) RegisterRunner(name string, handler *RegisteredRunner) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("runner handler with name '%s' already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	r.HandlerRegistry[name] = handler
}

// PopulateDefinitionsFromModel copies the loaded manifest definitions from
// the config model into the registry for easy access during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Runners {
		r.DefinitionRegistry[key] = val
	}
}
