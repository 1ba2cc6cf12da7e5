package invoke

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/basui01/brigade/checkpoint"
)

// Logger is the minimal logging surface WorkerContext needs. The package
// brigade/log's Logger satisfies this with its Info method.
type Logger interface {
	Info(msg string, args ...any)
}

// Worker is supplied by the caller of the engine: given an item's opaque
// data and a WorkerContext, it returns a value or an error. A *SuspendError
// return value is classified as a suspension rather than a failure; any
// other error is a failure, including one produced by ctx expiring. The
// worker should observe ctx cancellation cooperatively — Invoke does not
// forcibly tear down a worker goroutine that outlives its timeout.
type Worker func(ctx context.Context, wc *WorkerContext, data json.RawMessage) (json.RawMessage, error)

// WorkerContext is the single object a worker can use to talk back to the
// engine. Log appends the message to the engine log with an [item-id]
// prefix and to the item's own Logs sequence (spec.md §4.4).
type WorkerContext struct {
	itemID string
	item   *checkpoint.Item
	logger Logger
}

func newWorkerContext(item *checkpoint.Item, logger Logger) *WorkerContext {
	return &WorkerContext{itemID: item.ID, item: item, logger: logger}
}

// Log records message against both the engine log and the item's Logs.
func (wc *WorkerContext) Log(message string) {
	if wc.logger != nil {
		wc.logger.Info(fmt.Sprintf("[%s] %s", wc.itemID, message))
	}
	wc.item.AppendLog(message)
}

// ItemID returns the id of the item being processed.
func (wc *WorkerContext) ItemID() string { return wc.itemID }
