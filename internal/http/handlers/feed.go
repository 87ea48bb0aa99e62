package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// FeedHandler serves a driver's working views, either as a one-shot read or
// as a live server-sent event stream backed by a listener session.
type FeedHandler struct {
	base *Handlers
	uc   feedUsecase
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(base *Handlers, uc feedUsecase) *FeedHandler {
	return &FeedHandler{base: base, uc: uc}
}

// Views handles GET /drivers/{id}/views.
func (h *FeedHandler) Views(w http.ResponseWriter, r *http.Request) {
	driverID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	snap, err := h.uc.Fetch(r.Context(), driverID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toViewsResponse(snap))
}

// Stream handles GET /drivers/{id}/feed as an SSE stream. The session lives
// exactly as long as the request: disconnecting tears down its subscription
// and poll timer.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	driverID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	session, err := h.uc.Open(r.Context(), driverID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defer session.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-session.Updates():
			payload, err := json.Marshal(toViewsResponse(snap))
			if err != nil {
				h.base.Logger.Error("feed stream encode error", logx.Err(err))
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
