package parcel

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a parcel
type Status string

const (
	StatusPending           Status = "pending"             // Sender created the parcel, waiting for proposals
	StatusMatched           Status = "matched"             // At least one match proposed
	StatusAcceptedBySender  Status = "accepted_by_sender"  // Sender confirmed a carrier
	StatusAcceptedByCarrier Status = "accepted_by_carrier" // Carrier accepted the match
	StatusInTransit         Status = "in_transit"          // Carrier is moving the parcel
	StatusAwaitingRelay     Status = "awaiting_relay"      // Checkpoint created, waiting for next carrier
	StatusRelayInProgress   Status = "relay_in_progress"   // Next carrier confirmed the handoff
	StatusDelivered         Status = "delivered"           // Reached final destination
	StatusCancelled         Status = "cancelled"           // Cancelled before completion
	StatusFailed            Status = "failed"              // Journey aborted mid-transit
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Parcel represents a package entrusted to the marketplace by a sender
type Parcel struct {
	ID       uuid.UUID
	SenderID uuid.UUID

	// Goods information
	Description string
	WeightKg    *float64
	Dimensions  *string
	Fragile     bool
	Urgent      bool

	// Tracking number is issued once and never changes afterwards
	TrackingNumber string

	Status Status
	Price  *float64

	// Locations
	CurrentLocation  *string
	FinalDestination string

	// Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}
