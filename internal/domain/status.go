package domain

// DeliveryStatus represents the lifecycle state of a delivery.
type DeliveryStatus string

// List of possible delivery statuses
const (
	// StatusPending - unclaimed, open to any approved driver.
	StatusPending DeliveryStatus = "pending"
	// StatusPendingDriverAcceptance - pre-assigned to one driver who must confirm.
	StatusPendingDriverAcceptance DeliveryStatus = "pending_driver_acceptance"
	StatusAccepted                DeliveryStatus = "accepted"
	StatusAssigned                DeliveryStatus = "assigned"
	StatusInProgress              DeliveryStatus = "in_progress"
	StatusCompleted               DeliveryStatus = "completed"
	StatusCancelled               DeliveryStatus = "cancelled"
)

// List of allowed statuses
var allowedStatuses = [...]DeliveryStatus{
	StatusPending,
	StatusPendingDriverAcceptance,
	StatusAccepted,
	StatusAssigned,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Valid checks if the DeliveryStatus is valid
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Claimed reports whether the status requires an assigned driver.
func (s DeliveryStatus) Claimed() bool {
	switch s {
	case StatusAccepted, StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}
