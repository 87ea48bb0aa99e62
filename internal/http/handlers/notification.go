package handlers

import (
	"net/http"
	"strconv"
)

const defaultNotificationLimit = 50

// NotificationHandler serves per-user notifications.
type NotificationHandler struct {
	base *Handlers
	uc   notificationUsecase
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(base *Handlers, uc notificationUsecase) *NotificationHandler {
	return &NotificationHandler{base: base, uc: uc}
}

// List handles GET /users/{id}/notifications?unread=true&limit=N.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ns, err := h.uc.ListForUser(r.Context(), userID, unreadOnly, limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	out := make([]notificationResponse, 0, len(ns))
	for i := range ns {
		out = append(out, toNotificationResponse(&ns[i]))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flipped, err := h.uc.MarkRead(r.Context(), id, req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if !flipped {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
