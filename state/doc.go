// Package state implements the item state machine: the legal transitions
// between pending, processing, completed, failed and awaiting_agent, their
// entry actions, and the eligibility filter a scheduler run starts from.
//
// Every function here is pure with respect to I/O — it mutates the
// in-memory checkpoint.Checkpoint/checkpoint.Item it is given and returns,
// and never touches a Store. The caller (the scheduler) is responsible for
// flushing after each transition, matching the checkpoint-per-transition
// contract.
package state
