package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/basui01/brigade/checkpoint"
)

// ErrItemNotFound is returned when the named item does not exist in the
// checkpoint.
var ErrItemNotFound = errors.New("bridge: item not found")

// ErrNotAwaitingAgent is returned by Fulfill when the named item is not
// currently awaiting external fulfillment.
var ErrNotAwaitingAgent = errors.New("bridge: item is not awaiting_agent")

// PromptRequest describes one item a supervisor needs to act on: the
// payload the worker raised when it suspended (conventionally a list of
// chat-style messages, per spec.md §4.6), alongside enough context to
// route the reply back to the right item.
type PromptRequest struct {
	ItemID  string          `json:"itemId"`
	Prompt  json.RawMessage `json:"prompt"`
	Attempt int             `json:"attempt"`
}

// PendingPrompts returns one PromptRequest per item currently in
// awaiting_agent, in checkpoint order.
func PendingPrompts(cp *checkpoint.Checkpoint) []PromptRequest {
	var out []PromptRequest
	for _, it := range cp.Items {
		if it.Status != checkpoint.StatusAwaitingAgent {
			continue
		}
		out = append(out, PromptRequest{
			ItemID:  it.ID,
			Prompt:  it.PendingPrompt,
			Attempt: it.Attempts,
		})
	}
	return out
}

// Fulfill completes an awaiting_agent item with a supervisor-provided
// output: sets status to completed, records output, clears pendingPrompt,
// and increments completedCount (spec.md §4.6, "injecting an output").
func Fulfill(cp *checkpoint.Checkpoint, itemID string, output json.RawMessage) error {
	it := cp.ItemByID(itemID)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if it.Status != checkpoint.StatusAwaitingAgent {
		return fmt.Errorf("%w: %s is %s", ErrNotAwaitingAgent, itemID, it.Status)
	}

	it.Status = checkpoint.StatusCompleted
	it.Output = output
	it.PendingPrompt = nil
	cp.CompletedCount++
	return nil
}

// Retry rewrites an awaiting_agent item's data and resets it to pending so
// the next run re-processes it through the worker (spec.md §4.6, "or by
// rewriting the item's data and resetting status to pending").
func Retry(cp *checkpoint.Checkpoint, itemID string, newData json.RawMessage) error {
	it := cp.ItemByID(itemID)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if it.Status != checkpoint.StatusAwaitingAgent {
		return fmt.Errorf("%w: %s is %s", ErrNotAwaitingAgent, itemID, it.Status)
	}

	it.Data = newData
	it.Status = checkpoint.StatusPending
	it.PendingPrompt = nil
	return nil
}
