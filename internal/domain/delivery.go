package domain

import "time"

// Delivery - struct representing a dispatched vehicle delivery.
type Delivery struct {
	ID              string
	DealerID        string
	DriverID        *string
	SalesID         *string
	Status          DeliveryStatus
	PickupAddress   string
	DropoffAddress  string
	Vehicle         string
	ScheduledDate   *string
	ScheduledTime   *string
	AcceptedAt      *time.Time
	ChatActivatedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AssignedTo reports whether the delivery is currently held by the given driver.
func (d *Delivery) AssignedTo(driverID string) bool {
	return d.DriverID != nil && *d.DriverID == driverID
}

// Open reports whether the delivery can still be claimed by any approved driver.
func (d *Delivery) Open() bool {
	return d.Status == StatusPending && d.DriverID == nil
}

// DirectRequestFor reports whether the delivery is pre-assigned to the given
// driver and still awaiting their confirmation.
func (d *Delivery) DirectRequestFor(driverID string) bool {
	return d.Status == StatusPendingDriverAcceptance && d.AssignedTo(driverID)
}

// Approval - a durable dealer→driver approval edge. Immutable once created.
type Approval struct {
	DriverID  string
	DealerID  string
	CreatedAt time.Time
}

// Message - a chat message attached to a delivery conversation.
type Message struct {
	ID         string
	DeliveryID string
	SenderID   string
	Body       string
	CreatedAt  time.Time
}
