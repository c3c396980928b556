package match

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a match between a parcel and a carrier
type Status string

const (
	StatusPending       Status = "pending"        // Proposed, waiting for the carrier
	StatusAccepted      Status = "accepted"       // Carrier accepted the full journey
	StatusAcceptedRelay Status = "accepted_relay" // Carrier accepted a relay segment
	StatusRejected      Status = "rejected"       // Declined or lost the race
	StatusCompleted     Status = "completed"      // Segment or delivery finished
)

// IsCurrent reports whether the match holds the parcel right now.
func (s Status) IsCurrent() bool {
	return s == StatusAccepted || s == StatusAcceptedRelay
}

// Match represents a proposed or confirmed pairing between one parcel
// (or one relay segment of it) and one carrier's ride.
type Match struct {
	ID        uuid.UUID
	ParcelID  uuid.UUID
	CarrierID uuid.UUID
	RideID    *uuid.UUID

	Status Status

	// Segment is 0 for the initial journey and increments per relay handoff
	Segment int

	// RejectReason is set when a carrier declines explicitly
	RejectReason *string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	AcceptedAt *time.Time
}
