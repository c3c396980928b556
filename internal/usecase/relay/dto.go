package relay

import (
	"time"

	"github.com/google/uuid"

	domainRelay "parcel-relay/internal/domain/relay"
)

// Request DTOs
type CreateCheckpointRequest struct {
	ParcelID         uuid.UUID  `json:"parcel_id" validate:"required"`
	Location         string     `json:"location" validate:"required,min=3,max=255"`
	NextCarrierID    uuid.UUID  `json:"next_carrier_id" validate:"required"`
	Notes            *string    `json:"notes" validate:"omitempty,max=500"`
	EstimatedArrival *time.Time `json:"estimated_arrival" validate:"omitempty"`
}

type ConfirmCheckpointRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// CheckpointResponse is the wire shape for a ledger entry. The transfer
// code is included: the creating carrier relays it to the next carrier
// out of band.
type CheckpointResponse struct {
	ID               uuid.UUID  `json:"id"`
	ParcelID         uuid.UUID  `json:"parcel_id"`
	Location         string     `json:"location"`
	EventType        string     `json:"event_type"`
	NextCarrierID    uuid.UUID  `json:"next_carrier_id"`
	TransferCode     string     `json:"transfer_code"`
	Notes            *string    `json:"notes,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	Confirmed        bool       `json:"confirmed"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func ToCheckpointResponse(cp *domainRelay.Checkpoint) *CheckpointResponse {
	return &CheckpointResponse{
		ID:               cp.ID,
		ParcelID:         cp.ParcelID,
		Location:         cp.Location,
		EventType:        string(cp.EventType),
		NextCarrierID:    cp.NextCarrierID,
		TransferCode:     cp.TransferCode,
		Notes:            cp.Notes,
		EstimatedArrival: cp.EstimatedArrival,
		Confirmed:        cp.Confirmed,
		ConfirmedAt:      cp.ConfirmedAt,
		CreatedAt:        cp.CreatedAt,
	}
}

func ToCheckpointResponses(checkpoints []*domainRelay.Checkpoint) []*CheckpointResponse {
	responses := make([]*CheckpointResponse, len(checkpoints))
	for i, cp := range checkpoints {
		responses[i] = ToCheckpointResponse(cp)
	}
	return responses
}
