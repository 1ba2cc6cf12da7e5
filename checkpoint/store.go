package checkpoint

import (
	"context"
	"errors"
)

// ErrLocked is returned by Open when another process already holds the
// advisory lock for the same checkpoint path (spec.md §9: "concurrent
// engine instances targeting the same checkpoint file are UB" — this
// guards against the common accident, not distributed consensus).
var ErrLocked = errors.New("checkpoint: store already locked by another process")

// ErrClosed is returned by Store operations after Close.
var ErrClosed = errors.New("checkpoint: store is closed")

// Store loads and saves the complete state of a single job.
//
// Load returns (nil, nil) when no checkpoint exists yet — the caller is
// expected to create a fresh Checkpoint from the input in that case.
//
// Save must leave the durable state either in its pre-write form or in a
// valid post-write form; a reader must never observe partial JSON
// (spec.md §4.2's crash-safety contract).
//
// Saves are serialized by the Scheduler (spec.md §4.2, "Concurrency
// contract"); a Store implementation need not be re-entrant.
type Store interface {
	Load(ctx context.Context) (*Checkpoint, error)
	Save(ctx context.Context, cp *Checkpoint) error
	Close() error
}
