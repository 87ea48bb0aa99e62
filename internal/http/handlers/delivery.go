package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/arbiter"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// DeliveryHandler serves the dispatch coordination endpoints.
type DeliveryHandler struct {
	base *Handlers
	uc   dispatchUsecase
}

// NewDeliveryHandler creates a DeliveryHandler.
func NewDeliveryHandler(base *Handlers, uc dispatchUsecase) *DeliveryHandler {
	return &DeliveryHandler{base: base, uc: uc}
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ActorID) == "" {
		writeError(w, r, http.StatusBadRequest, "actor_id required")
		return
	}

	d, err := h.uc.Create(r.Context(), createInputFromRequest(req), req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDeliveryResponse(d))
}

// Claim handles POST /deliveries/{id}/claim. A lost race maps to 410 so the
// client knows to re-fetch rather than retry.
func (h *DeliveryHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.uc.Claim(r.Context(), id, req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDeliveryResponse(d))
}

// Decline handles POST /deliveries/{id}/decline. Declining twice is a 204
// both times.
func (h *DeliveryHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.uc.Decline(r.Context(), id, req.ActorID); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Start handles POST /deliveries/{id}/start.
func (h *DeliveryHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.uc.Start)
}

// Complete handles POST /deliveries/{id}/complete.
func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.uc.Complete)
}

// Schedule handles POST /deliveries/{id}/schedule.
func (h *DeliveryHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req scheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.uc.ConfirmSchedule(r.Context(), id, req.Date, req.Time, req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDeliveryResponse(d))
}

// Cancel handles POST /deliveries/{id}/cancel.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.uc.Cancel(r.Context(), id, req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDeliveryResponse(d))
}

func (h *DeliveryHandler) advance(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error),
) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req actorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := op(r.Context(), id, req.ActorID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDeliveryResponse(d))
}

func createInputFromRequest(req createDeliveryRequest) arbiter.CreateInput {
	return arbiter.CreateInput{
		DealerID:       req.DealerID,
		SalesID:        req.SalesID,
		DriverID:       req.DriverID,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Vehicle:        req.Vehicle,
	}
}
