package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genItem builds a well-formed Item whose fields rapid can vary freely.
func genItem(t *rapid.T, ordinal int) *Item {
	status := rapid.SampledFrom([]Status{
		StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusAwaitingAgent,
	}).Draw(t, "status")

	return &Item{
		ID:        fmt.Sprintf("item-%d", ordinal),
		Data:      json.RawMessage(rapid.StringMatching(`\{"n":(0|[1-9][0-9]{0,3})\}`).Draw(t, "data")),
		Status:    status,
		Attempts:  rapid.IntRange(0, 10).Draw(t, "attempts"),
		LastError: rapid.StringN(0, 20, -1).Draw(t, "lastError"),
		Logs:      rapid.SliceOfN(rapid.StringN(0, 10, -1), 0, 5).Draw(t, "logs"),
	}
}

// TestCheckpointRoundTripIsLossless is the property test for invariant P7:
// Load(Save(c)) reproduces c's job id, start time and counters, and each
// item's id, status, attempts and data, for arbitrary checkpoints.
func TestCheckpointRoundTripIsLossless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "itemCount")
		items := make([]*Item, n)
		for i := range items {
			items[i] = genItem(rt, i)
		}

		cp := &Checkpoint{
			JobID:          rapid.StringN(1, 20, -1).Draw(rt, "jobID"),
			StartTime:      time.Unix(rapid.Int64Range(0, 2_000_000_000).Draw(rt, "startTime"), 0).UTC(),
			Items:          items,
			CompletedCount: rapid.IntRange(0, n).Draw(rt, "completedCount"),
			FailedCount:    rapid.IntRange(0, n).Draw(rt, "failedCount"),
		}

		dir := t.TempDir()
		store, err := OpenFileStore(filepath.Join(dir, "checkpoint.json"))
		require.NoError(rt, err)
		defer store.Close()

		require.NoError(rt, store.Save(context.Background(), cp))
		loaded, err := store.Load(context.Background())
		require.NoError(rt, err)
		require.NotNil(rt, loaded)

		require.Equal(rt, cp.JobID, loaded.JobID)
		require.True(rt, cp.StartTime.Equal(loaded.StartTime))
		require.Equal(rt, cp.CompletedCount, loaded.CompletedCount)
		require.Equal(rt, cp.FailedCount, loaded.FailedCount)
		require.Len(rt, loaded.Items, len(cp.Items))
		for i, it := range cp.Items {
			require.Equal(rt, it.ID, loaded.Items[i].ID)
			require.Equal(rt, it.Status, loaded.Items[i].Status)
			require.Equal(rt, it.Attempts, loaded.Items[i].Attempts)
			require.JSONEq(rt, string(it.Data), string(loaded.Items[i].Data))
		}
	})
}
