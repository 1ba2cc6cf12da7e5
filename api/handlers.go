package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/basui01/brigade/bridge"
	"github.com/basui01/brigade/checkpoint"
)

// Handler serves the bridge HTTP surface over a single checkpoint.Store.
type Handler struct {
	store  checkpoint.Store
	logger *zap.Logger

	// mu serializes the load-mutate-save sequence of fulfill and retry, so
	// two concurrent mutating requests cannot overwrite each other's change.
	mu sync.Mutex
}

// NewHandler builds a Handler over store.
func NewHandler(store checkpoint.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// HandleHealth answers a liveness probe; it never touches the store.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"status": "healthy"})
}

// HandleCheckpoint serves GET /checkpoint: the full, current checkpoint.
func (h *Handler) HandleCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, h.logger, ErrInternal, "load checkpoint: "+err.Error())
		return
	}
	if cp == nil {
		writeError(w, h.logger, ErrNotFound, "no checkpoint has been created yet")
		return
	}
	writeSuccess(w, cp)
}

// HandlePending serves GET /pending: every item currently awaiting_agent.
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	cp, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, h.logger, ErrInternal, "load checkpoint: "+err.Error())
		return
	}
	if cp == nil {
		writeError(w, h.logger, ErrNotFound, "no checkpoint has been created yet")
		return
	}
	writeSuccess(w, bridge.PendingPrompts(cp))
}

type fulfillRequest struct {
	ItemID string          `json:"itemId"`
	Output json.RawMessage `json:"output"`
}

// HandleFulfill serves POST /fulfill: injects a supervisor-provided output
// for one awaiting_agent item and persists the result.
func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req fulfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, ErrInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, h.logger, ErrInvalidRequest, "itemId is required")
		return
	}

	cp, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, h.logger, ErrInternal, "load checkpoint: "+err.Error())
		return
	}
	if cp == nil {
		writeError(w, h.logger, ErrNotFound, "no checkpoint has been created yet")
		return
	}

	if err := bridge.Fulfill(cp, req.ItemID, req.Output); err != nil {
		writeBridgeError(w, h.logger, err)
		return
	}

	if err := h.store.Save(r.Context(), cp); err != nil {
		writeError(w, h.logger, ErrInternal, "save checkpoint: "+err.Error())
		return
	}

	writeSuccess(w, cp.ItemByID(req.ItemID))
}

type retryRequest struct {
	ItemID string          `json:"itemId"`
	Data   json.RawMessage `json:"data"`
}

// HandleRetry serves POST /retry: rewrites an awaiting_agent item's data
// and resets it to pending so the next run re-dispatches it.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, ErrInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, h.logger, ErrInvalidRequest, "itemId is required")
		return
	}

	cp, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, h.logger, ErrInternal, "load checkpoint: "+err.Error())
		return
	}
	if cp == nil {
		writeError(w, h.logger, ErrNotFound, "no checkpoint has been created yet")
		return
	}

	if err := bridge.Retry(cp, req.ItemID, req.Data); err != nil {
		writeBridgeError(w, h.logger, err)
		return
	}

	if err := h.store.Save(r.Context(), cp); err != nil {
		writeError(w, h.logger, ErrInternal, "save checkpoint: "+err.Error())
		return
	}

	writeSuccess(w, cp.ItemByID(req.ItemID))
}

// writeBridgeError maps a bridge package sentinel error to the right
// ErrorCode instead of collapsing everything to 500.
func writeBridgeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, bridge.ErrItemNotFound):
		writeError(w, logger, ErrNotFound, err.Error())
	case errors.Is(err, bridge.ErrNotAwaitingAgent):
		writeError(w, logger, ErrConflict, err.Error())
	default:
		writeError(w, logger, ErrInternal, err.Error())
	}
}
