package notification

import (
	"time"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/parcel"
)

// LifecycleTransitioned is emitted once per successful status transition.
// Duplicate delivery is tolerated downstream; loss is not.
type LifecycleTransitioned struct {
	ParcelID   uuid.UUID
	From       parcel.Status
	To         parcel.Status
	ActorID    uuid.UUID
	OccurredAt time.Time
}

// Notification is one message addressed to one recipient, derived
// from a lifecycle event.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	ParcelID    uuid.UUID
	Type        string
	Message     string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}
