package invoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/basui01/brigade/checkpoint"
	"golang.org/x/time/rate"
)

// Config parameterizes a single Invoke call.
type Config struct {
	// Timeout is the per-item budget (spec.md's itemTimeoutMs). Zero or
	// negative disables the timeout race entirely.
	Timeout time.Duration

	// Limiter optionally throttles dispatch of worker invocations, e.g.
	// to respect a downstream API's rate limit. Nil disables throttling.
	Limiter *rate.Limiter
}

type workerResult struct {
	value []byte
	err   error
}

// Invoke runs worker against item, racing it against cfg.Timeout if set,
// and classifies the result into an Outcome. It never mutates item.Status
// or any checkpoint aggregate — only item.Logs, via WorkerContext.Log.
func Invoke(ctx context.Context, worker Worker, item *checkpoint.Item, logger Logger, cfg Config) Outcome {
	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return Fail(err.Error())
		}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	wc := newWorkerContext(item, logger)

	resCh := make(chan workerResult, 1)
	go func() {
		value, err := worker(runCtx, wc, item.Data)
		resCh <- workerResult{value: value, err: err}
	}()

	select {
	case res := <-resCh:
		return classify(res)
	case <-runCtx.Done():
		if cfg.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return Fail(fmt.Sprintf("Operation timed out after %dms", cfg.Timeout.Milliseconds()))
		}
		return Fail(runCtx.Err().Error())
	}
}

func classify(res workerResult) Outcome {
	if res.err == nil {
		return Success(res.value)
	}

	var suspend *SuspendError
	if errors.As(res.err, &suspend) {
		return Suspend(suspend.Payload)
	}
	return Fail(res.err.Error())
}
