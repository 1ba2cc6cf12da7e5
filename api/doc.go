// Package api implements the supervising bridge HTTP surface (spec.md
// §4.6): read-only visibility into a checkpoint and the two mutating
// actions — fulfill and retry — that resolve an awaiting_agent item
// between runs.
//
// Handlers are thin wrappers around package bridge and a checkpoint.Store:
// every request loads the current checkpoint, optionally mutates it
// through bridge.Fulfill/bridge.Retry, and saves it back. A Handler runs
// each fulfill and retry request's load-mutate-save under one mutex, so the
// API is safe to run concurrently with other requests to the same Handler;
// it is not designed to run
// concurrently with an in-progress Scheduler pass against the same store,
// since a Scheduler holds its own in-memory *checkpoint.Checkpoint and
// would overwrite a concurrent bridge mutation on its next flush. The
// intended shape is the one spec.md describes: run the job, let it
// suspend items it can't resolve on its own, then use api (or bridge
// directly) to fulfill them before the next resume.
package api
