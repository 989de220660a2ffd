// Package resource owns the registry of named locks the scheduler uses to
// keep steps that touch the same external resource from running at once.
// Lock entries are created lazily on first reference and live for the
// manager's lifetime; they are never garbage-collected.
package resource
