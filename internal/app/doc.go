// Package app wires the application together: logger, configuration
// loader, runner registry, lock registry and wave scheduler. Each App
// instance is fully isolated, with its own logger, registry and
// scheduler, so tests can run many of them in parallel.
package app
