// Package scheduler drives every eligible item in a checkpoint through the
// invoker while respecting a concurrency bound, flushing the checkpoint
// after each state transition and reporting a termination summary. It is
// the only component that mutates a *checkpoint.Checkpoint concurrently
// with worker invocations in flight; all such mutation is serialized on the
// scheduler's own goroutine, matching the "single-threaded cooperative
// driver" model described for the engine.
package scheduler
