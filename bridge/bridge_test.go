package bridge

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basui01/brigade/checkpoint"
)

func newAwaitingCheckpoint(t *testing.T) *checkpoint.Checkpoint {
	t.Helper()
	cp := checkpoint.NewCheckpoint("job-bridge", time.Now(), []json.RawMessage{
		json.RawMessage(`{"q":"hi"}`),
		json.RawMessage(`{"q":"bye"}`),
	})
	cp.Items[0].Status = checkpoint.StatusAwaitingAgent
	cp.Items[0].PendingPrompt = json.RawMessage(`[{"role":"user","content":"hi"}]`)
	return cp
}

func TestPendingPromptsOnlyListsAwaitingItems(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	prompts := PendingPrompts(cp)
	require.Len(t, prompts, 1)
	assert.Equal(t, "item-0", prompts[0].ItemID)
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(prompts[0].Prompt))
}

func TestFulfillCompletesItem(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	err := Fulfill(cp, "item-0", json.RawMessage(`"answer"`))
	require.NoError(t, err)

	it := cp.ItemByID("item-0")
	assert.Equal(t, checkpoint.StatusCompleted, it.Status)
	assert.JSONEq(t, `"answer"`, string(it.Output))
	assert.Nil(t, it.PendingPrompt)
	assert.Equal(t, 1, cp.CompletedCount)
}

func TestFulfillRejectsItemNotAwaiting(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	err := Fulfill(cp, "item-1", json.RawMessage(`"answer"`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAwaitingAgent))
}

func TestFulfillRejectsUnknownItem(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	err := Fulfill(cp, "does-not-exist", json.RawMessage(`"answer"`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestRetryResetsItemToPending(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	err := Retry(cp, "item-0", json.RawMessage(`{"q":"hi again"}`))
	require.NoError(t, err)

	it := cp.ItemByID("item-0")
	assert.Equal(t, checkpoint.StatusPending, it.Status)
	assert.JSONEq(t, `{"q":"hi again"}`, string(it.Data))
	assert.Nil(t, it.PendingPrompt)
}

func TestRetryRejectsItemNotAwaiting(t *testing.T) {
	cp := newAwaitingCheckpoint(t)

	err := Retry(cp, "item-1", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAwaitingAgent))
}
