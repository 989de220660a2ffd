// Package dag builds and validates the dependency graph for a plan's steps
// and computes the wave layering the scheduler executes. Dangling
// dependency references are dropped with a warning (or rejected in strict
// mode); cycles always fail validation before anything runs.
package dag
