package state

import "github.com/basui01/brigade/checkpoint"

// Eligible returns the items a scheduler run should drive through the
// invoker, in their original order. It excludes completed items,
// awaiting_agent items, and failed items that have exhausted maxRetries —
// everything else (pending, processing left behind by a crash, and failed
// items still under budget) is eligible.
func Eligible(cp *checkpoint.Checkpoint, maxRetries int) []*checkpoint.Item {
	eligible := make([]*checkpoint.Item, 0, len(cp.Items))
	for _, it := range cp.Items {
		if IsEligible(it, maxRetries) {
			eligible = append(eligible, it)
		}
	}
	return eligible
}

// IsEligible reports whether a single item should be picked up by a new run.
func IsEligible(it *checkpoint.Item, maxRetries int) bool {
	switch it.Status {
	case checkpoint.StatusCompleted, checkpoint.StatusAwaitingAgent:
		return false
	case checkpoint.StatusFailed:
		return it.Attempts < maxRetries
	default:
		return true
	}
}

// IsTerminalForRun reports whether an item has reached a state that ends
// its participation in the current run: completed, awaiting_agent, or
// failed with attempts exhausted. A non-terminal failed item (still under
// budget) only becomes eligible again on a later run — not this one.
func IsTerminalForRun(it *checkpoint.Item, maxRetries int) bool {
	switch it.Status {
	case checkpoint.StatusCompleted, checkpoint.StatusAwaitingAgent:
		return true
	case checkpoint.StatusFailed:
		return it.Attempts >= maxRetries
	default:
		return false
	}
}
