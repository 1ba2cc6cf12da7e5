// Package invoke drives a single worker invocation: it races the worker
// against an optional per-item timeout, classifies the result into the
// three-way Outcome the scheduler applies to the state machine, and
// exposes the WorkerContext logging hook workers use to narrate progress.
//
// Invoke never mutates a checkpoint.Checkpoint or checkpoint.Item status —
// it only appends to the item's Logs through WorkerContext.Log and returns
// an Outcome. Applying the Outcome to the state machine is the scheduler's
// job (package state).
package invoke
