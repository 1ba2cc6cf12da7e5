// Package checkpoint defines the durable state of a batch job — the Item
// and Checkpoint data model — and the Store interface that loads and saves
// it across process restarts.
//
// # Core model
//
//   - Item: one unit of work plus its per-run execution metadata (status,
//     attempts, last error, pending prompt, output, logs).
//   - Checkpoint: the whole job's durable state — job id, start time, the
//     ordered item list, and the completed/failed aggregate counters.
//
// # Backends
//
// Store is implemented by FileStore (single JSON file, atomic rename,
// advisory lock — the reference behavior), RedisStore, and SQLStore. All
// three honor the same Load/Save contract and the round-trip invariant
// Load(Save(c)) == c.
package checkpoint
