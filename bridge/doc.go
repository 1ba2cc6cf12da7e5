// Package bridge implements the supervisor side of agent-mediated
// suspension (spec.md §4.6). The engine itself never fulfills a suspended
// item; bridge exposes the two actions an external supervisor performs
// between runs as pure functions over an already-loaded *checkpoint.Checkpoint
// — PendingPrompts to discover what needs attention, and Fulfill/Retry to
// resolve it. Callers are responsible for loading the checkpoint beforehand
// and saving it afterward; bridge does not touch a Store.
package bridge
