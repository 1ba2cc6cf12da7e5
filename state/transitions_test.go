package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/basui01/brigade/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCP(n int) *checkpoint.Checkpoint {
	raw := make([]json.RawMessage, n)
	for i := range raw {
		raw[i] = []byte(`{}`)
	}
	return checkpoint.NewCheckpoint("job-1", time.Now(), raw)
}

func TestEnterProcessingIncrementsAttempts(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]
	require.NoError(t, EnterProcessing(it))
	assert.Equal(t, checkpoint.StatusProcessing, it.Status)
	assert.Equal(t, 1, it.Attempts)
}

func TestEnterProcessingRejectsIllegalSource(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]
	it.Status = checkpoint.StatusCompleted

	err := EnterProcessing(it)
	require.Error(t, err)
	var target *ErrIllegalTransition
	assert.ErrorAs(t, err, &target)
}

func TestEnterCompletedSetsOutputAndIncrementsCount(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]
	require.NoError(t, EnterProcessing(it))

	EnterCompleted(cp, it, json.RawMessage(`{"result":42}`))
	assert.Equal(t, checkpoint.StatusCompleted, it.Status)
	assert.JSONEq(t, `{"result":42}`, string(it.Output))
	assert.Equal(t, 1, cp.CompletedCount)
}

func TestEnterFailedIncrementsFailedCountOnlyAtBudget(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]
	maxRetries := 2

	require.NoError(t, EnterProcessing(it)) // attempts=1
	EnterFailed(cp, it, maxRetries, "boom")
	assert.Equal(t, 0, cp.FailedCount, "should not fail permanently under budget")

	it.Status = checkpoint.StatusFailed // simulate eligibility re-check path
	require.NoError(t, EnterProcessing(it)) // attempts=2
	EnterFailed(cp, it, maxRetries, "boom again")
	assert.Equal(t, 1, cp.FailedCount, "attempts has reached maxRetries")
	assert.Equal(t, "boom again", it.LastError)
}

func TestEnterAwaitingAgentRollsBackAttempts(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]
	require.NoError(t, EnterProcessing(it)) // attempts=1

	EnterAwaitingAgent(it, json.RawMessage(`{"messages":[]}`))
	assert.Equal(t, checkpoint.StatusAwaitingAgent, it.Status)
	assert.Equal(t, 0, it.Attempts, "suspension must not consume retry budget")
	assert.JSONEq(t, `{"messages":[]}`, string(it.PendingPrompt))
}

func TestEligibilityExcludesCompletedAwaitingAndExhaustedFailed(t *testing.T) {
	cp := newCP(4)
	cp.Items[0].Status = checkpoint.StatusCompleted
	cp.Items[1].Status = checkpoint.StatusAwaitingAgent
	cp.Items[2].Status = checkpoint.StatusFailed
	cp.Items[2].Attempts = 3
	cp.Items[3].Status = checkpoint.StatusFailed
	cp.Items[3].Attempts = 1

	eligible := Eligible(cp, 3)
	require.Len(t, eligible, 1)
	assert.Equal(t, cp.Items[3], eligible[0])
}

func TestEligibilityIncludesPendingAndCrashedProcessing(t *testing.T) {
	cp := newCP(2)
	cp.Items[1].Status = checkpoint.StatusProcessing

	eligible := Eligible(cp, 3)
	assert.Len(t, eligible, 2)
}

func TestIsTerminalForRun(t *testing.T) {
	cp := newCP(1)
	it := cp.Items[0]

	it.Status = checkpoint.StatusFailed
	it.Attempts = 1
	assert.False(t, IsTerminalForRun(it, 3))

	it.Attempts = 3
	assert.True(t, IsTerminalForRun(it, 3))

	it.Status = checkpoint.StatusCompleted
	assert.True(t, IsTerminalForRun(it, 3))
}
