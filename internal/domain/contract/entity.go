package contract

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the stored state of a carrier contract.
// Expiry is derived from EndDate at check time and is never stored.
type Status string

const (
	StatusPendingSignature Status = "pending_signature"
	StatusSigned           Status = "signed"
)

// Contract binds a professional carrier to the platform. Professional
// actions (relay creation, merchant deliveries) require a signed,
// non-expired contract.
type Contract struct {
	ID        uuid.UUID
	CarrierID uuid.UUID

	Status    Status
	StartDate time.Time
	// EndDate nil means indefinite
	EndDate  *time.Time
	SignedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired is a pure function of the end date and the supplied clock.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.EndDate != nil && c.EndDate.Before(now)
}
