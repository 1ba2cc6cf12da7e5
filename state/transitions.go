package state

import (
	"encoding/json"
	"fmt"

	"github.com/basui01/brigade/checkpoint"
)

// ErrIllegalTransition is returned by EnterProcessing when an item is not
// in a state that may move to processing. The accepted sources are
// pending, failed, and a crash-stranded processing item re-entering
// processing on the run that picks it back up. EnterProcessing does not
// check a failed item's retry budget; the eligibility filter (IsEligible)
// does.
type ErrIllegalTransition struct {
	ItemID string
	From   checkpoint.Status
	To     checkpoint.Status
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("state: item %s cannot transition from %s to %s", e.ItemID, e.From, e.To)
}

// EnterProcessing applies the pending|failed|processing -> processing
// transition: increment attempts. The caller flushes afterward. Accepting
// processing as a source lets a crash-stranded item (left processing by a
// prior run that never reached a terminal outcome) be redispatched instead
// of being stuck forever — spec.md §4.5 requires such an item be re-eligible
// on the next run, with the worker relied on to be idempotent.
func EnterProcessing(it *checkpoint.Item) error {
	switch it.Status {
	case checkpoint.StatusPending, checkpoint.StatusFailed, checkpoint.StatusProcessing:
	default:
		return &ErrIllegalTransition{ItemID: it.ID, From: it.Status, To: checkpoint.StatusProcessing}
	}
	it.Status = checkpoint.StatusProcessing
	it.Attempts++
	return nil
}

// EnterCompleted applies the processing -> completed transition: set
// output, increment the checkpoint's completedCount, and clear any stale
// PendingPrompt so I5 (pendingPrompt set iff awaiting_agent) holds even if
// a supervisor moved an awaiting_agent item back to pending by hand.
func EnterCompleted(cp *checkpoint.Checkpoint, it *checkpoint.Item, output json.RawMessage) {
	it.Status = checkpoint.StatusCompleted
	it.Output = output
	it.PendingPrompt = nil
	cp.CompletedCount++
}

// EnterFailed applies the processing -> failed transition: set lastError;
// if attempts have reached maxRetries the item is terminal for all future
// runs and failedCount is incremented (I3).
func EnterFailed(cp *checkpoint.Checkpoint, it *checkpoint.Item, maxRetries int, errMsg string) {
	it.Status = checkpoint.StatusFailed
	it.LastError = errMsg
	if it.Attempts >= maxRetries {
		cp.FailedCount++
	}
}

// EnterAwaitingAgent applies the processing -> awaiting_agent transition:
// record the suspension payload and roll the attempts counter back by one,
// so a suspension never consumes retry budget (I4, P2).
func EnterAwaitingAgent(it *checkpoint.Item, prompt json.RawMessage) {
	it.Status = checkpoint.StatusAwaitingAgent
	it.PendingPrompt = prompt
	it.Attempts--
}
