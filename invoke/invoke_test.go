package invoke

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/basui01/brigade/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newItem() *checkpoint.Item {
	return &checkpoint.Item{ID: "item-0", Data: json.RawMessage(`{"n":1}`), Status: checkpoint.StatusProcessing}
}

func TestInvokeSuccess(t *testing.T) {
	item := newItem()
	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		wc.Log("computing")
		return json.RawMessage(`{"result":42}`), nil
	}

	outcome := Invoke(context.Background(), worker, item, nil, Config{})
	assert.Equal(t, KindSuccess, outcome.Kind())
	assert.JSONEq(t, `{"result":42}`, string(outcome.Value()))
	require.Len(t, item.Logs, 1)
	assert.Equal(t, "computing", item.Logs[0])
}

func TestInvokeFailOnError(t *testing.T) {
	item := newItem()
	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		return nil, errors.New("network unreachable")
	}

	outcome := Invoke(context.Background(), worker, item, nil, Config{})
	assert.Equal(t, KindFail, outcome.Kind())
	assert.Equal(t, "network unreachable", outcome.Message())
}

func TestInvokeSuspendClassification(t *testing.T) {
	item := newItem()
	payload := json.RawMessage(`{"messages":[{"role":"user","content":"help"}]}`)
	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		return nil, NewSuspendError(payload)
	}

	outcome := Invoke(context.Background(), worker, item, nil, Config{})
	assert.Equal(t, KindSuspend, outcome.Kind())
	assert.JSONEq(t, string(payload), string(outcome.Payload()))
}

func TestInvokeSuspendClassificationThroughWrappedError(t *testing.T) {
	item := newItem()
	payload := json.RawMessage(`{"messages":[]}`)
	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		return nil, wrapErr(NewSuspendError(payload))
	}

	outcome := Invoke(context.Background(), worker, item, nil, Config{})
	assert.Equal(t, KindSuspend, outcome.Kind())
}

func TestInvokeTimeout(t *testing.T) {
	item := newItem()
	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	outcome := Invoke(context.Background(), worker, item, nil, Config{Timeout: 10 * time.Millisecond})
	assert.Equal(t, KindFail, outcome.Kind())
	assert.Contains(t, outcome.Message(), "timed out after 10ms")
}

func TestInvokeRespectsRateLimiter(t *testing.T) {
	item := newItem()
	limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
	// Exhaust the initial burst so the Invoke call below must wait.
	limiter.Allow()

	worker := func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`1`), nil
	}

	start := time.Now()
	outcome := Invoke(context.Background(), worker, item, nil, Config{Limiter: limiter})
	assert.Equal(t, KindSuccess, outcome.Kind())
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func wrapErr(err error) error {
	return &wrappedError{inner: err}
}

type wrappedError struct{ inner error }

func (w *wrappedError) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrappedError) Unwrap() error { return w.inner }
