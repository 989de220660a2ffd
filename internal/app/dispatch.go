package app

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/stepwave/internal/config"
	"github.com/vk/stepwave/internal/ctxlog"
)

// dispatchStep is the scheduler.Runner the app supplies: it resolves the
// step's runner type to a registered Go handler, decodes the step's
// arguments into the handler's input struct, and invokes it via reflection.
func (a *App) dispatchStep(ctx context.Context, step *config.Step) (any, error) {
	logger := ctxlog.FromContext(ctx).With("step", step.ID())
	logger.Info("▶️ Starting step")

	runnerDef, ok := a.registry.DefinitionRegistry[step.RunnerType]
	if !ok {
		return nil, fmt.Errorf("unknown runner type '%s'", step.RunnerType)
	}
	handlerName := runnerDef.Lifecycle.OnRun
	registeredHandler, ok := a.registry.HandlerRegistry[handlerName]
	if !ok {
		return nil, fmt.Errorf("handler '%s' not registered", handlerName)
	}

	var inputStruct any
	if registeredHandler.NewInput != nil {
		inputStruct = registeredHandler.NewInput()
	}
	if inputStruct != nil {
		err := a.converter.DecodeBody(ctx, inputStruct, step.Arguments, runnerDef.Inputs, a.evalCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to decode arguments for step %s: %w", step.ID(), err)
		}
	}

	logger.Debug("Calling step run handler.", "handler", handlerName)
	handlerFunc := reflect.ValueOf(registeredHandler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}

	if inputStruct == nil {
		inputType := handlerFunc.Type().In(1)
		callArgs = append(callArgs, reflect.Zero(inputType))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := handlerFunc.Call(callArgs)
	output, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return nil, errResult.(error)
	}

	logger.Info("✅ Finished step")
	return output, nil
}
