package domain

import "time"

// NotificationType represents the closed routing vocabulary for notifications.
type NotificationType string

// List of possible notification types
const (
	TypeNewDriverApplication NotificationType = "new_driver_application"
	TypeNewDeliveryAvailable NotificationType = "new_delivery_available"
	TypeDeliveryReminder     NotificationType = "delivery_reminder"
	TypeApplicationApproved  NotificationType = "application_approved"
	TypeApplicationRejected  NotificationType = "application_rejected"
	TypeApplicationFollowup  NotificationType = "application_followup"
	TypeAdminInvitation      NotificationType = "admin_invitation"
	TypeAdminRoleGranted     NotificationType = "admin_role_granted"
	TypeDeliveryAssigned     NotificationType = "delivery_assigned"
	TypeDeliveryAccepted     NotificationType = "delivery_accepted"
	TypeDeliveryDeclined     NotificationType = "delivery_declined"
	TypeDeliveryCancelled    NotificationType = "delivery_cancelled"
	TypeStatusUpdate         NotificationType = "status_update"
	TypeNewMessage           NotificationType = "new_message"
	TypeScheduleConfirmed    NotificationType = "schedule_confirmed"
)

// List of allowed notification types
var allowedNotificationTypes = [...]NotificationType{
	TypeNewDriverApplication,
	TypeNewDeliveryAvailable,
	TypeDeliveryReminder,
	TypeApplicationApproved,
	TypeApplicationRejected,
	TypeApplicationFollowup,
	TypeAdminInvitation,
	TypeAdminRoleGranted,
	TypeDeliveryAssigned,
	TypeDeliveryAccepted,
	TypeDeliveryDeclined,
	TypeDeliveryCancelled,
	TypeStatusUpdate,
	TypeNewMessage,
	TypeScheduleConfirmed,
}

// AllNotificationTypes returns the full routing vocabulary.
func AllNotificationTypes() []NotificationType {
	return allowedNotificationTypes[:]
}

// Valid checks if the NotificationType is valid
func (t NotificationType) Valid() bool {
	for _, v := range allowedNotificationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Route resolves the client deep link for a notification of this type. The
// type tag and delivery id are sufficient on their own; no extra lookups.
// Unknown types return ok=false and must be logged by the caller, never
// silently dropped.
func (t NotificationType) Route(deliveryID string) (string, bool) {
	switch t {
	case TypeNewDeliveryAvailable, TypeDeliveryReminder, TypeDeliveryAssigned,
		TypeDeliveryAccepted, TypeDeliveryDeclined, TypeDeliveryCancelled,
		TypeStatusUpdate, TypeScheduleConfirmed:
		return "/deliveries/" + deliveryID, true
	case TypeNewMessage:
		return "/deliveries/" + deliveryID + "/chat", true
	case TypeNewDriverApplication, TypeApplicationApproved,
		TypeApplicationRejected, TypeApplicationFollowup:
		return "/applications", true
	case TypeAdminInvitation, TypeAdminRoleGranted:
		return "/admin/team", true
	default:
		return "", false
	}
}

// Notification - a per-user notification record. Write-once except for the
// read flag.
type Notification struct {
	ID         string
	UserID     string
	DeliveryID *string
	Type       NotificationType
	Title      string
	Message    string
	Read       bool
	CreatedAt  time.Time
}
