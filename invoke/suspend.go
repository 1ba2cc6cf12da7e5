package invoke

import "encoding/json"

// SuspendError is the sentinel a worker returns to request delegation to
// an external brain. errors.As unwraps through ordinary %w wrapping, so a
// worker may wrap it with additional context without losing the
// classification (spec.md §4.4: "a sentinel error kind carrying the
// prompt payload").
type SuspendError struct {
	Payload json.RawMessage
}

func (e *SuspendError) Error() string {
	return "invoke: worker requested agent-mediated suspension"
}

// NewSuspendError builds a SuspendError carrying payload, conventionally a
// serialized list of chat-style messages.
func NewSuspendError(payload json.RawMessage) *SuspendError {
	return &SuspendError{Payload: payload}
}
