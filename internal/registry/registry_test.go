package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stepwave/internal/config"
	"github.com/zclconf/go-cty/cty"
)

type greeterInput struct {
	Name  string `hcl:"name"`
	Shout bool   `hcl:"shout,optional"`
}

func greeterHandler() *RegisteredRunner {
	return &RegisteredRunner{
		NewInput:  func() any { return new(greeterInput) },
		InputType: reflect.TypeOf(greeterInput{}),
		Fn: func(ctx context.Context, in *greeterInput) (any, error) {
			return in.Name, nil
		},
	}
}

func greeterDefinition() *config.RunnerDefinition {
	return &config.RunnerDefinition{
		Type:      "greeter",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunGreeter"},
		Inputs: map[string]*config.InputDefinition{
			"name":  {Name: "name", Type: cty.String},
			"shout": {Name: "shout", Type: cty.Bool, Optional: true},
		},
		Outputs: map[string]*config.OutputDefinition{},
	}
}

func TestRegisterRunner(t *testing.T) {
	r := New()
	r.RegisterRunner("OnRunGreeter", greeterHandler())
	assert.Contains(t, r.HandlerRegistry, "OnRunGreeter")

	assert.Panics(t, func() {
		r.RegisterRunner("OnRunGreeter", greeterHandler())
	})
}

func TestPopulateDefinitionsFromModel(t *testing.T) {
	r := New()
	model := &config.Model{
		Runners: map[string]*config.RunnerDefinition{"greeter": greeterDefinition()},
		Plan:    &config.Plan{},
	}
	r.PopulateDefinitionsFromModel(model)
	assert.Contains(t, r.DefinitionRegistry, "greeter")
}

func TestValidateRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("matching manifest and handler pass", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", greeterHandler())
		r.DefinitionRegistry["greeter"] = greeterDefinition()
		assert.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("manifest without on_run fails", func(t *testing.T) {
		r := New()
		def := greeterDefinition()
		def.Lifecycle = nil
		r.DefinitionRegistry["greeter"] = def

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "no on_run handler")
	})

	t.Run("missing Go handler fails", func(t *testing.T) {
		r := New()
		r.DefinitionRegistry["greeter"] = greeterDefinition()

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "not registered")
	})

	t.Run("manifest input absent from Go struct fails", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", greeterHandler())
		def := greeterDefinition()
		def.Inputs["volume"] = &config.InputDefinition{Name: "volume", Type: cty.Number}
		r.DefinitionRegistry["greeter"] = def

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "not found in Go struct")
	})

	t.Run("Go field absent from manifest fails", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", greeterHandler())
		def := greeterDefinition()
		delete(def.Inputs, "shout")
		r.DefinitionRegistry["greeter"] = def

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "not declared in manifest")
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", greeterHandler())
		def := greeterDefinition()
		def.Inputs["name"].Type = cty.Number
		r.DefinitionRegistry["greeter"] = def

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "type mismatch")
	})

	t.Run("dynamic manifest type skips static checking", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", greeterHandler())
		def := greeterDefinition()
		def.Inputs["name"].Type = cty.DynamicPseudoType
		r.DefinitionRegistry["greeter"] = def

		assert.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("inputs declared but handler takes none fails", func(t *testing.T) {
		r := New()
		r.RegisterRunner("OnRunGreeter", &RegisteredRunner{
			Fn: func(ctx context.Context, _ *struct{}) (any, error) { return nil, nil },
		})
		r.DefinitionRegistry["greeter"] = greeterDefinition()

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "no input struct")
	})
}
