// Package job is the top-level façade a caller actually invokes: it binds
// a Logger, a checkpoint.Store, and a Scheduler together into Start/Resume
// operations, mirroring the lifecycle of an executor that creates a run
// once and can be restarted against the same durable state afterward.
package job
