package match

import (
	"time"

	"github.com/google/uuid"

	domainMatch "parcel-relay/internal/domain/match"
)

// Request DTOs
type ProposeRequest struct {
	ParcelID  uuid.UUID  `json:"parcel_id" validate:"required"`
	CarrierID uuid.UUID  `json:"carrier_id" validate:"required"`
	RideID    *uuid.UUID `json:"ride_id" validate:"omitempty"`
}

type RejectRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// MatchResponse is the wire shape for a match
type MatchResponse struct {
	ID           uuid.UUID  `json:"id"`
	ParcelID     uuid.UUID  `json:"parcel_id"`
	CarrierID    uuid.UUID  `json:"carrier_id"`
	RideID       *uuid.UUID `json:"ride_id,omitempty"`
	Status       string     `json:"status"`
	Segment      int        `json:"segment"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
}

func ToMatchResponse(m *domainMatch.Match) *MatchResponse {
	return &MatchResponse{
		ID:           m.ID,
		ParcelID:     m.ParcelID,
		CarrierID:    m.CarrierID,
		RideID:       m.RideID,
		Status:       string(m.Status),
		Segment:      m.Segment,
		RejectReason: m.RejectReason,
		CreatedAt:    m.CreatedAt,
		AcceptedAt:   m.AcceptedAt,
	}
}

func ToMatchResponses(matches []*domainMatch.Match) []*MatchResponse {
	responses := make([]*MatchResponse, len(matches))
	for i, m := range matches {
		responses[i] = ToMatchResponse(m)
	}
	return responses
}
