// Package log provides the engine's append-only line logger: every entry
// is written as "[<ISO-8601>] <message> <args...>" (error entries get an
// extra "[ERROR] " prefix) to both stdout and a per-job log file rooted
// beside the checkpoint path, matching spec.md §4.1/§6 exactly while
// running on top of go.uber.org/zap.
package log
