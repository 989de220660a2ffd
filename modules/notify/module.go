// Package notify provides the 'notify' runner: it pushes a run event to a
// socket.io endpoint, typically a live dashboard watching plan progress.
package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/vk/stepwave/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the notify runner.
type Input struct {
	URL                string         `hcl:"url"`
	Namespace          string         `hcl:"namespace,optional"`
	Event              string         `hcl:"event"`
	Payload            map[string]any `hcl:"payload,optional"`
	AckEvent           string         `hcl:"ack_event,optional"`
	Timeout            string         `hcl:"timeout,optional"`
	InsecureSkipVerify bool           `hcl:"insecure_skip_verify,optional"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	AckData any `json:"ack_data"`
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value *Output
	err   error
}

// OnRunNotify is the handler for the 'notify' runner's on_run lifecycle event.
func OnRunNotify(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "notify", "url", input.URL, "event", input.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout := 10 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		} else {
			timeout = parsed
		}
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", input.Namespace, "sid", io.Id())

		jsonData, _ := json.Marshal(input.Payload)
		logger.Info("Emitting event", "event", input.Event, "data", string(jsonData))
		io.Emit(input.Event, input.Payload)

		if input.AckEvent == "" {
			// Fire-and-forget notification.
			done <- opResult{value: &Output{}}
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	if input.AckEvent != "" {
		io.On(types.EventName(input.AckEvent), func(data ...any) {
			var ackData any
			if len(data) > 0 {
				ackData = data[0]
			}
			done <- opResult{value: &Output{AckData: ackData}}
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.AckEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunNotify", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunNotify,
	})
}
