package state

import (
	"encoding/json"
	"testing"

	"github.com/basui01/brigade/checkpoint"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// outcomeKind mirrors the three invoker outcomes this package reacts to.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeFail
	outcomeSuspend
)

// TestProperty_CompletedAndFailedCountsMatchStatuses is the generative
// test for invariant P1: after any sequence of transitions, completedCount
// equals the number of completed items and failedCount equals the number
// of failed items that have exhausted maxRetries (I2, I3).
func TestProperty_CompletedAndFailedCountsMatchStatuses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxRetries := rapid.IntRange(1, 4).Draw(rt, "maxRetries")
		n := rapid.IntRange(1, 8).Draw(rt, "itemCount")
		cp := newCP(n)

		steps := rapid.IntRange(0, 40).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			idx := rapid.IntRange(0, n-1).Draw(rt, "idx")
			it := cp.Items[idx]

			if it.Status == checkpoint.StatusPending || (it.Status == checkpoint.StatusFailed && it.Attempts < maxRetries) {
				require.NoError(rt, EnterProcessing(it))
				continue
			}
			if it.Status == checkpoint.StatusProcessing {
				kind := rapid.SampledFrom([]outcomeKind{outcomeSuccess, outcomeFail, outcomeSuspend}).Draw(rt, "outcome")
				switch kind {
				case outcomeSuccess:
					EnterCompleted(cp, it, json.RawMessage(`{}`))
				case outcomeFail:
					EnterFailed(cp, it, maxRetries, "err")
				case outcomeSuspend:
					EnterAwaitingAgent(it, json.RawMessage(`{}`))
				}
			}
		}

		wantCompleted := 0
		wantFailed := 0
		for _, it := range cp.Items {
			if it.Status == checkpoint.StatusCompleted {
				wantCompleted++
			}
			if it.Status == checkpoint.StatusFailed && it.Attempts >= maxRetries {
				wantFailed++
			}
		}
		require.Equal(rt, wantCompleted, cp.CompletedCount)
		require.Equal(rt, wantFailed, cp.FailedCount)
	})
}

// TestProperty_SuspensionNeverConsumesRetryBudget is the generative test
// for P2: attempts is non-negative, and a round trip through
// processing -> awaiting_agent -> processing leaves attempts unchanged
// relative to before the suspending attempt, for any number of
// interleaved suspensions.
func TestProperty_SuspensionNeverConsumesRetryBudget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cp := newCP(1)
		it := cp.Items[0]

		suspensions := rapid.IntRange(0, 10).Draw(rt, "suspensions")
		for i := 0; i < suspensions; i++ {
			before := it.Attempts
			require.NoError(rt, EnterProcessing(it))
			EnterAwaitingAgent(it, json.RawMessage(`{}`))
			require.Equal(rt, before, it.Attempts, "suspension must not change net attempts")
			require.GreaterOrEqual(rt, it.Attempts, 0)

			it.Status = checkpoint.StatusPending // a supervisor resets it between runs
		}
	})
}
