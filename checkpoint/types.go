package checkpoint

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of an Item.
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusAwaitingAgent  Status = "awaiting_agent"
)

// IsValid reports whether s is one of the five permitted statuses (I1).
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusAwaitingAgent:
		return true
	default:
		return false
	}
}

// Item is one unit of work and its per-run execution metadata.
//
// Data, PendingPrompt and Output are opaque payloads. They are kept as
// json.RawMessage rather than any so that values round-trip without being
// decoded into Go's map/number representation. Their whitespace is not
// preserved: encoding compacts them (and FileStore re-indents the file).
type Item struct {
	ID            string          `json:"id"`
	Data          json.RawMessage `json:"data"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"lastError,omitempty"`
	PendingPrompt json.RawMessage `json:"pendingPrompt,omitempty"`
	Output        json.RawMessage `json:"output,omitempty"`
	Logs          []string        `json:"logs"`

	// logsMu guards Logs specifically: a worker invocation may still be
	// appending to it via AppendLog while the Scheduler marshals the
	// checkpoint for an unrelated item's flush (spec.md §5, "Shared-resource
	// policy" — the callback must use a thread-safe append drained before
	// the next flush). Every other field is touched only by the Scheduler's
	// own goroutine and needs no lock.
	logsMu sync.Mutex `json:"-"`

	// extra carries unknown fields seen on Unmarshal so they survive a
	// Load/Save round-trip unchanged (forward compatibility, spec.md §6).
	extra map[string]json.RawMessage `json:"-"`
}

// AppendLog appends message to the item's log sequence. Safe to call
// concurrently with MarshalJSON (and thus with checkpoint.Store.Save)
// from a different item's flush.
func (it *Item) AppendLog(message string) {
	it.logsMu.Lock()
	defer it.logsMu.Unlock()
	it.Logs = append(it.Logs, message)
}

var itemKnownFields = map[string]bool{
	"id": true, "data": true, "status": true, "attempts": true,
	"lastError": true, "pendingPrompt": true, "output": true, "logs": true,
}

// MarshalJSON emits the known fields plus any unknown fields captured on load.
func (it *Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(it.extra)+8)
	for k, v := range it.extra {
		out[k] = v
	}

	marshalField := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal item field %q: %w", key, err)
		}
		out[key] = b
		return nil
	}

	if err := marshalField("id", it.ID); err != nil {
		return nil, err
	}
	if it.Data == nil {
		out["data"] = []byte("null")
	} else {
		out["data"] = it.Data
	}
	if err := marshalField("status", it.Status); err != nil {
		return nil, err
	}
	if err := marshalField("attempts", it.Attempts); err != nil {
		return nil, err
	}
	if it.LastError != "" {
		if err := marshalField("lastError", it.LastError); err != nil {
			return nil, err
		}
	} else {
		delete(out, "lastError")
	}
	if it.PendingPrompt != nil {
		out["pendingPrompt"] = it.PendingPrompt
	} else {
		delete(out, "pendingPrompt")
	}
	if it.Output != nil {
		out["output"] = it.Output
	} else {
		delete(out, "output")
	}
	it.logsMu.Lock()
	logs := append([]string(nil), it.Logs...)
	it.logsMu.Unlock()
	if logs == nil {
		logs = []string{}
	}
	if err := marshalField("logs", logs); err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses the known fields and stashes anything else in extra.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type knownItem struct {
		ID            string          `json:"id"`
		Data          json.RawMessage `json:"data"`
		Status        Status          `json:"status"`
		Attempts      int             `json:"attempts"`
		LastError     string          `json:"lastError,omitempty"`
		PendingPrompt json.RawMessage `json:"pendingPrompt,omitempty"`
		Output        json.RawMessage `json:"output,omitempty"`
		Logs          []string        `json:"logs"`
	}
	var k knownItem
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	it.ID = k.ID
	it.Data = k.Data
	it.Status = k.Status
	it.Attempts = k.Attempts
	it.LastError = k.LastError
	it.PendingPrompt = k.PendingPrompt
	it.Output = k.Output
	it.Logs = k.Logs

	it.extra = make(map[string]json.RawMessage)
	for key, v := range raw {
		if !itemKnownFields[key] {
			it.extra[key] = v
		}
	}
	return nil
}

// Checkpoint is the whole job's durable state (spec.md §3).
type Checkpoint struct {
	JobID          string    `json:"jobId"`
	StartTime      time.Time `json:"startTime"`
	Items          []*Item   `json:"items"`
	CompletedCount int       `json:"completedCount"`
	FailedCount    int       `json:"failedCount"`

	extra map[string]json.RawMessage `json:"-"`
}

var checkpointKnownFields = map[string]bool{
	"jobId": true, "startTime": true, "items": true,
	"completedCount": true, "failedCount": true,
}

// NewCheckpoint creates a fresh checkpoint for input under the given jobID
// (job.Start passes job-<unix-millis>), with every item seeded as
// item-<ordinal> in status
// pending with zero attempts (spec.md §3, "Lifecycle").
func NewCheckpoint(jobID string, startTime time.Time, rawItems []json.RawMessage) *Checkpoint {
	items := make([]*Item, len(rawItems))
	for i, data := range rawItems {
		items[i] = &Item{
			ID:     fmt.Sprintf("item-%d", i),
			Data:   data,
			Status: StatusPending,
			Logs:   []string{},
		}
	}
	return &Checkpoint{
		JobID:     jobID,
		StartTime: startTime,
		Items:     items,
	}
}

// ItemByID returns the item with the given id, or nil if not found.
func (cp *Checkpoint) ItemByID(id string) *Item {
	for _, it := range cp.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (cp *Checkpoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(cp.extra)+5)
	for k, v := range cp.extra {
		out[k] = v
	}

	set := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal checkpoint field %q: %w", key, err)
		}
		out[key] = b
		return nil
	}

	if err := set("jobId", cp.JobID); err != nil {
		return nil, err
	}
	if err := set("startTime", cp.StartTime.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	items := cp.Items
	if items == nil {
		items = []*Item{}
	}
	if err := set("items", items); err != nil {
		return nil, err
	}
	if err := set("completedCount", cp.CompletedCount); err != nil {
		return nil, err
	}
	if err := set("failedCount", cp.FailedCount); err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

func (cp *Checkpoint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type knownCheckpoint struct {
		JobID          string    `json:"jobId"`
		StartTime      time.Time `json:"startTime"`
		Items          []*Item   `json:"items"`
		CompletedCount int       `json:"completedCount"`
		FailedCount    int       `json:"failedCount"`
	}
	var k knownCheckpoint
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	cp.JobID = k.JobID
	cp.StartTime = k.StartTime
	cp.Items = k.Items
	cp.CompletedCount = k.CompletedCount
	cp.FailedCount = k.FailedCount

	cp.extra = make(map[string]json.RawMessage)
	for key, v := range raw {
		if !checkpointKnownFields[key] {
			cp.extra[key] = v
		}
	}
	return nil
}
