package kafka

import (
	"strings"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
)

// EventDTO is the wire shape of a push event.
type EventDTO struct {
	UserID     string    `json:"user_id"`
	DeliveryID string    `json:"delivery_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to push.Event
func ToDomain(dto EventDTO) push.Event {
	return push.Event{
		UserID:     strings.TrimSpace(dto.UserID),
		DeliveryID: strings.TrimSpace(dto.DeliveryID),
		Type:       domain.NotificationType(strings.TrimSpace(dto.Type)),
		Title:      dto.Title,
		Body:       dto.Body,
		CreatedAt:  dto.CreatedAt,
	}
}

// FromDomain converts push.Event to EventDTO
func FromDomain(e push.Event) EventDTO {
	return EventDTO{
		UserID:     e.UserID,
		DeliveryID: e.DeliveryID,
		Type:       string(e.Type),
		Title:      e.Title,
		Body:       e.Body,
		CreatedAt:  e.CreatedAt,
	}
}
