// Package registry provides the central "glue" for the module system.
//
// The Registry stores the mappings between the handler names used in runner
// manifests (e.g., "OnRunShell") and the compiled Go functions that
// implement them, together with the parsed manifest definitions. During
// startup the registry is populated and then validated so the Go code and
// the public-facing manifests cannot drift apart silently.
package registry
