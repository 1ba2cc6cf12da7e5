package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/basui01/brigade/checkpoint"
	"github.com/basui01/brigade/invoke"
	"github.com/basui01/brigade/scheduler"
)

// ErrNoCheckpoint is returned by Resume when the store has no persisted
// checkpoint to resume from.
var ErrNoCheckpoint = errors.New("job: no checkpoint to resume")

// Options configures the Scheduler a Job drives.
type Options struct {
	Concurrency int
	MaxRetries  int
	ItemTimeout time.Duration
	Limiter     *rate.Limiter
	Metrics     *scheduler.Metrics
	Tracer      trace.Tracer
}

// Job binds a checkpoint.Store and a worker to the Scheduler that drives
// them, exposing the two operations a caller invokes: Start (create-or-
// resume then run) and Resume (run only, failing if nothing was created).
type Job struct {
	store  checkpoint.Store
	logger scheduler.Logger
	opts   Options
}

// New builds a Job over an already-opened store.
func New(store checkpoint.Store, logger scheduler.Logger, opts Options) *Job {
	return &Job{store: store, logger: logger, opts: opts}
}

// Start loads the store's checkpoint if one exists (a restart after a
// crash or an earlier partial run); otherwise it creates a fresh
// checkpoint from input and persists it before dispatching any work, so
// that a crash between Start and the first flush still leaves a durable
// pending-state checkpoint behind.
func (j *Job) Start(ctx context.Context, input []json.RawMessage, worker invoke.Worker) (*checkpoint.Checkpoint, scheduler.Summary, error) {
	cp, err := j.store.Load(ctx)
	if err != nil {
		return nil, scheduler.Summary{}, fmt.Errorf("job: load checkpoint: %w", err)
	}
	if cp == nil {
		cp = checkpoint.NewCheckpoint(fmt.Sprintf("job-%d", time.Now().UnixMilli()), time.Now(), input)
		if err := j.store.Save(ctx, cp); err != nil {
			return nil, scheduler.Summary{}, fmt.Errorf("job: save initial checkpoint: %w", err)
		}
	}
	return j.run(ctx, cp, worker)
}

// Resume loads an existing checkpoint and runs it to completion. Unlike
// Start, it never creates one — resuming with no prior run is a caller
// error (spec.md's crash-restart contract assumes a checkpoint already
// exists).
func (j *Job) Resume(ctx context.Context, worker invoke.Worker) (*checkpoint.Checkpoint, scheduler.Summary, error) {
	cp, err := j.store.Load(ctx)
	if err != nil {
		return nil, scheduler.Summary{}, fmt.Errorf("job: load checkpoint: %w", err)
	}
	if cp == nil {
		return nil, scheduler.Summary{}, ErrNoCheckpoint
	}
	return j.run(ctx, cp, worker)
}

func (j *Job) run(ctx context.Context, cp *checkpoint.Checkpoint, worker invoke.Worker) (*checkpoint.Checkpoint, scheduler.Summary, error) {
	sched := scheduler.New(j.store, worker, j.logger, scheduler.Config{
		Concurrency: j.opts.Concurrency,
		MaxRetries:  j.opts.MaxRetries,
		ItemTimeout: j.opts.ItemTimeout,
		Limiter:     j.opts.Limiter,
		Metrics:     j.opts.Metrics,
		Tracer:      j.opts.Tracer,
	})
	summary, err := sched.Run(ctx, cp)
	if err != nil {
		return cp, scheduler.Summary{}, err
	}
	return cp, summary, nil
}
