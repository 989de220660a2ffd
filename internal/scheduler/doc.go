// Package scheduler executes a plan's steps in dependency waves. Waves run
// strictly in order with a synchronization barrier between them; steps
// inside a wave run concurrently under a bounded worker budget, holding
// the resource locks they declared for the duration of their runner call.
//
// A failed step never aborts the run: its failure is captured into its
// result and later waves still attempt to execute. Callers that want
// fail-fast semantics must inspect the returned results themselves.
package scheduler
