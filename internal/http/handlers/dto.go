package handlers

import (
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/feed"
)

type createDeliveryRequest struct {
	DealerID       string  `json:"dealer_id"`
	SalesID        *string `json:"sales_id,omitempty"`
	DriverID       *string `json:"driver_id,omitempty"`
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
	Vehicle        string  `json:"vehicle"`
	ActorID        string  `json:"actor_id"`
}

type actorRequest struct {
	ActorID string `json:"actor_id"`
}

type typingResponse struct {
	OthersTyping bool `json:"others_typing"`
}

type scheduleRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	ActorID string `json:"actor_id"`
}

type deliveryResponse struct {
	ID              string     `json:"id"`
	DealerID        string     `json:"dealer_id"`
	DriverID        *string    `json:"driver_id,omitempty"`
	SalesID         *string    `json:"sales_id,omitempty"`
	Status          string     `json:"status"`
	PickupAddress   string     `json:"pickup_address"`
	DropoffAddress  string     `json:"dropoff_address"`
	Vehicle         string     `json:"vehicle"`
	ScheduledDate   *string    `json:"scheduled_date,omitempty"`
	ScheduledTime   *string    `json:"scheduled_time,omitempty"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	ChatActivatedAt *time.Time `json:"chat_activated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toDeliveryResponse(d *domain.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:              d.ID,
		DealerID:        d.DealerID,
		DriverID:        d.DriverID,
		SalesID:         d.SalesID,
		Status:          string(d.Status),
		PickupAddress:   d.PickupAddress,
		DropoffAddress:  d.DropoffAddress,
		Vehicle:         d.Vehicle,
		ScheduledDate:   d.ScheduledDate,
		ScheduledTime:   d.ScheduledTime,
		AcceptedAt:      d.AcceptedAt,
		ChatActivatedAt: d.ChatActivatedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type viewsResponse struct {
	Open      []deliveryResponse `json:"open"`
	Active    []deliveryResponse `json:"active"`
	Recent    []deliveryResponse `json:"recent"`
	Refreshed time.Time          `json:"refreshed"`
}

func toViewsResponse(s feed.Snapshot) viewsResponse {
	return viewsResponse{
		Open:      toDeliveryResponses(s.Open),
		Active:    toDeliveryResponses(s.Active),
		Recent:    toDeliveryResponses(s.Recent),
		Refreshed: s.Refreshed,
	}
}

func toDeliveryResponses(ds []domain.Delivery) []deliveryResponse {
	out := make([]deliveryResponse, 0, len(ds))
	for i := range ds {
		out = append(out, toDeliveryResponse(&ds[i]))
	}
	return out
}

type notificationResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	DeliveryID *string   `json:"delivery_id,omitempty"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	Route      string    `json:"route"`
	CreatedAt  time.Time `json:"created_at"`
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	deliveryID := ""
	if n.DeliveryID != nil {
		deliveryID = *n.DeliveryID
	}
	route, _ := n.Type.Route(deliveryID)
	return notificationResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		DeliveryID: n.DeliveryID,
		Type:       string(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		Read:       n.Read,
		Route:      route,
		CreatedAt:  n.CreatedAt,
	}
}
