package relay

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a checkpoint entry. Only carrier-to-carrier
// transfers exist today.
type EventType string

const (
	EventTransfer EventType = "transfer"
)

// Checkpoint records a physical handoff point in a parcel's journey.
// Checkpoints are append-only and ordered by CreatedAt.
type Checkpoint struct {
	ID       uuid.UUID
	ParcelID uuid.UUID

	Location  string
	EventType EventType

	// NextCarrierID is the carrier expected to pick the parcel up here
	NextCarrierID uuid.UUID

	// TransferCode must be presented by the next carrier to confirm receipt.
	// Unique within the parcel's checkpoint history.
	TransferCode string

	Notes            *string
	EstimatedArrival *time.Time

	Confirmed   bool
	ConfirmedAt *time.Time

	CreatedAt time.Time
}
