package contract

import (
	"time"

	"github.com/google/uuid"

	domainContract "parcel-relay/internal/domain/contract"
)

// ContractResponse adds the derived expiry flag to the stored fields
type ContractResponse struct {
	ID        uuid.UUID  `json:"id"`
	CarrierID uuid.UUID  `json:"carrier_id"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func ToContractResponse(c *domainContract.Contract, now time.Time) *ContractResponse {
	return &ContractResponse{
		ID:        c.ID,
		CarrierID: c.CarrierID,
		Status:    string(c.Status),
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		SignedAt:  c.SignedAt,
		Expired:   c.IsExpired(now),
	}
}
