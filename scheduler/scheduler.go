package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/basui01/brigade/checkpoint"
	"github.com/basui01/brigade/invoke"
	"github.com/basui01/brigade/state"
)

const instrumentationName = "github.com/basui01/brigade/scheduler"

// Logger is what the Scheduler needs to report progress. log.Logger
// satisfies it.
type Logger interface {
	invoke.Logger
	Error(msg string, args ...any)
}

// Config controls dispatch behavior. Concurrency and MaxRetries mirror
// spec.md §3's Configuration surface; Limiter, Metrics and Tracer are
// ambient and nil-safe.
type Config struct {
	Concurrency int
	MaxRetries  int
	ItemTimeout time.Duration
	Limiter     *rate.Limiter
	Metrics     *Metrics
	Tracer      trace.Tracer
}

// Scheduler drives every eligible item in a checkpoint through worker to a
// terminal-for-this-run state, flushing store after every transition.
type Scheduler struct {
	store  checkpoint.Store
	worker invoke.Worker
	logger Logger
	cfg    Config
	tracer trace.Tracer
}

// New builds a Scheduler. cfg.Concurrency and cfg.Tracer default to 1 and
// the global otel tracer respectively when left zero/nil.
func New(store checkpoint.Store, worker invoke.Worker, logger Logger, cfg Config) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &Scheduler{store: store, worker: worker, logger: logger, cfg: cfg, tracer: tracer}
}

// Summary reports the job-level outcome counts spec.md §7 requires.
type Summary struct {
	Completed int
	Failed    int
	Awaiting  int
}

type invocationResult struct {
	item    *checkpoint.Item
	outcome invoke.Outcome
}

// Run computes the eligible set from cp (spec.md §4.5), dispatches at most
// cfg.Concurrency invocations concurrently, applies each Outcome's entry
// action and flushes the checkpoint after every transition, and returns
// once every eligible item has reached a terminal-for-this-run state.
//
// Canceling ctx stops Run from dequeuing any further items — it will not
// call EnterProcessing (and so will not spend retry budget) on work that
// never started — but it still drains every already-dispatched invocation
// from results and applies its outcome before returning, so an in-flight
// invocation's result is never lost on shutdown.
//
// The only error Run returns is a flush (Save) failure — a fatal I/O
// condition per spec.md §7's exit code contract. Per-item failures are
// recorded on the item and reflected in Summary, never returned as an
// error.
func (s *Scheduler) Run(ctx context.Context, cp *checkpoint.Checkpoint) (Summary, error) {
	queue := state.Eligible(cp, s.cfg.MaxRetries)

	sem := semaphore.NewWeighted(int64(s.cfg.Concurrency))
	g, gctx := errgroup.WithContext(ctx)
	results := make(chan invocationResult, s.cfg.Concurrency)

	inFlight := 0
	i := 0
	for i < len(queue) || inFlight > 0 {
		if ctx.Err() == nil && i < len(queue) && sem.TryAcquire(1) {
			item := queue[i]
			i++

			if err := state.EnterProcessing(item); err != nil {
				// An item already terminal slipped past the eligibility
				// filter; nothing to dispatch, move on.
				sem.Release(1)
				continue
			}
			if err := s.flush(ctx, cp); err != nil {
				sem.Release(1)
				return Summary{}, err
			}
			s.cfg.Metrics.dispatched()

			inFlight++
			attempt := item.Attempts
			g.Go(func() error {
				defer sem.Release(1)
				outcome := s.invokeOne(gctx, item, attempt)
				// results is sized to cfg.Concurrency and at most
				// cfg.Concurrency sends are ever outstanding at once (one
				// per semaphore permit), so this send never blocks — no
				// need to race it against gctx.Done() and risk dropping
				// the outcome of an invocation that already ran.
				results <- invocationResult{item: item, outcome: outcome}
				return nil
			})
			continue
		}

		if inFlight == 0 {
			if ctx.Err() == nil && i < len(queue) {
				// Every result has been received, but the goroutine that
				// sent the last one may not have run its deferred Release
				// yet. Wait for that permit rather than stopping early.
				if err := sem.Acquire(ctx, 1); err == nil {
					sem.Release(1)
				}
				continue
			}
			// Nothing left to dispatch (queue exhausted) or the context
			// was canceled before we could dispatch anything further, and
			// nothing is in flight to wait for. Stop instead of blocking
			// on an empty results channel.
			break
		}

		res := <-results
		inFlight--
		s.cfg.Metrics.completed()
		if err := s.applyOutcome(cp, res); err != nil {
			return Summary{}, err
		}
		if err := s.flush(ctx, cp); err != nil {
			return Summary{}, err
		}
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return s.logSummary(cp), nil
}

func (s *Scheduler) invokeOne(ctx context.Context, item *checkpoint.Item, attempt int) invoke.Outcome {
	ctx, span := s.tracer.Start(ctx, "brigade.invoke_item", trace.WithAttributes(
		attribute.String("item.id", item.ID),
		attribute.Int("item.attempt", attempt),
	))
	defer span.End()

	outcome := invoke.Invoke(ctx, s.worker, item, s.logger, invoke.Config{
		Timeout: s.cfg.ItemTimeout,
		Limiter: s.cfg.Limiter,
	})

	span.SetAttributes(attribute.String("item.outcome", outcome.Kind().String()))
	return outcome
}

// applyOutcome runs the state-machine entry action for res and updates the
// aggregate counters, mirroring spec.md §4.3's transition table exactly.
func (s *Scheduler) applyOutcome(cp *checkpoint.Checkpoint, res invocationResult) error {
	item := res.item
	switch res.outcome.Kind() {
	case invoke.KindSuccess:
		state.EnterCompleted(cp, item, res.outcome.Value())
		s.cfg.Metrics.observeOutcome("completed")
	case invoke.KindSuspend:
		state.EnterAwaitingAgent(item, res.outcome.Payload())
		s.cfg.Metrics.observeOutcome("suspended")
		s.cfg.Metrics.observeSuspension()
	case invoke.KindFail:
		state.EnterFailed(cp, item, s.cfg.MaxRetries, res.outcome.Message())
		s.logger.Error(fmt.Sprintf("[%s] attempt failed", item.ID), res.outcome.Message())
		if item.Attempts < s.cfg.MaxRetries {
			s.cfg.Metrics.observeRetry()
		} else {
			s.cfg.Metrics.observeOutcome("failed")
		}
	default:
		return fmt.Errorf("scheduler: unknown outcome kind %v for item %s", res.outcome.Kind(), item.ID)
	}
	return nil
}

func (s *Scheduler) flush(ctx context.Context, cp *checkpoint.Checkpoint) error {
	start := time.Now()
	err := s.store.Save(ctx, cp)
	s.cfg.Metrics.observeFlush(time.Since(start))
	if err != nil {
		return fmt.Errorf("scheduler: flush checkpoint: %w", err)
	}
	return nil
}

// logSummary emits the termination summary line spec.md §4.5 requires,
// plus a distinct line when any item is awaiting external fulfillment.
func (s *Scheduler) logSummary(cp *checkpoint.Checkpoint) Summary {
	awaiting := 0
	failedTerminal := 0
	for _, it := range cp.Items {
		switch it.Status {
		case checkpoint.StatusAwaitingAgent:
			awaiting++
		case checkpoint.StatusFailed:
			if it.Attempts >= s.cfg.MaxRetries {
				failedTerminal++
			}
		}
	}

	summary := Summary{Completed: cp.CompletedCount, Failed: failedTerminal, Awaiting: awaiting}
	s.logger.Info(fmt.Sprintf("job %s finished", cp.JobID),
		fmt.Sprintf("completed=%d", summary.Completed),
		fmt.Sprintf("failed=%d", summary.Failed),
		fmt.Sprintf("awaiting=%d", summary.Awaiting),
	)
	if awaiting > 0 {
		s.logger.Info(fmt.Sprintf("job %s has %d item(s) awaiting external fulfillment", cp.JobID, awaiting))
	}
	return summary
}
