// Package http_request provides the 'http_request' runner: it performs a
// single HTTP request and reports the response.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL     string `hcl:"url"`
	Method  string `hcl:"method,optional"`
	Timeout string `hcl:"timeout,optional"`
}

// Output is the result payload of an http_request step.
type Output struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// OnRunHttpRequest is the handler for the 'http_request' runner's on_run event.
func OnRunHttpRequest(ctx context.Context, input *Input) (any, error) {
	log := ctxlog.FromContext(ctx)

	method := input.Method
	if method == "" {
		method = http.MethodGet
	}

	client := &http.Client{}
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		client.Timeout = timeout
	}

	log.Info("Making HTTP request", "method", method, "url", input.URL)

	req, err := http.NewRequestWithContext(ctx, method, input.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Output{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunHttpRequest", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunHttpRequest,
	})
}
