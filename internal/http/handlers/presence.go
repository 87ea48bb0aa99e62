package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/presence"
)

// PresenceHandler serves the typing indicator for delivery chats. Keystroke
// reports fan out over the bus; the stream side folds them into a single
// others-typing flag for the caller.
type PresenceHandler struct {
	base      *Handlers
	uc        presenceUsecase
	staleness time.Duration
}

// NewPresenceHandler creates a PresenceHandler.
func NewPresenceHandler(base *Handlers, uc presenceUsecase, staleness time.Duration) *PresenceHandler {
	return &PresenceHandler{base: base, uc: uc, staleness: staleness}
}

// Touch handles POST /deliveries/{id}/typing.
func (h *PresenceHandler) Touch(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ActorID == "" {
		writeError(w, r, http.StatusBadRequest, "actor_id required")
		return
	}

	h.uc.Touch(r.Context(), deliveryID, req.ActorID)
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /deliveries/{id}/typing/stream as an SSE stream of
// others-typing flips for the actor given in ?actor_id.
func (h *PresenceHandler) Stream(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	actorID := r.URL.Query().Get("actor_id")
	if actorID == "" {
		writeError(w, r, http.StatusBadRequest, "actor_id required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := h.uc.SubscribeTyping(r.Context(), deliveryID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defer func() { _ = sub.Close() }()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	watcher := presence.NewWatcher(actorID, h.staleness)

	// The ticker re-evaluates staleness so a lost typing=false still flips
	// the flag back within the window.
	ticker := time.NewTicker(h.staleness / 5)
	defer ticker.Stop()

	last := false
	if !h.emit(w, flusher, last) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-sub.Entries():
			if !ok {
				return
			}
			watcher.Observe(e)
		case <-ticker.C:
		}
		if cur := watcher.OthersTyping(); cur != last {
			last = cur
			if !h.emit(w, flusher, cur) {
				return
			}
		}
	}
}

func (h *PresenceHandler) emit(w http.ResponseWriter, flusher http.Flusher, typing bool) bool {
	payload, err := json.Marshal(typingResponse{OthersTyping: typing})
	if err != nil {
		h.base.Logger.Error("typing stream encode error", logx.Err(err))
		return false
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
