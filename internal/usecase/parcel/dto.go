package parcel

import (
	"time"

	"github.com/google/uuid"

	domainParcel "parcel-relay/internal/domain/parcel"
)

// Request DTOs
type CreateParcelRequest struct {
	Description      string   `json:"description" validate:"required,min=3,max=1000"`
	WeightKg         *float64 `json:"weight_kg" validate:"omitempty,gt=0,max=1000"`
	Dimensions       *string  `json:"dimensions" validate:"omitempty,max=100"`
	Fragile          bool     `json:"fragile"`
	Urgent           bool     `json:"urgent"`
	Price            *float64 `json:"price" validate:"omitempty,min=0"`
	PickupLocation   *string  `json:"pickup_location" validate:"omitempty,max=255"`
	FinalDestination string   `json:"final_destination" validate:"required,min=3,max=255"`
}

type TransitionRequest struct {
	TargetStatus string `json:"target_status" validate:"required"`
}

type ParcelFilterRequest struct {
	Status   *domainParcel.Status `form:"status"`
	Page     int                  `form:"page"`
	PageSize int                  `form:"page_size"`
}

// Response DTOs
type ParcelResponse struct {
	ID               uuid.UUID `json:"id"`
	SenderID         uuid.UUID `json:"sender_id"`
	Description      string    `json:"description"`
	WeightKg         *float64  `json:"weight_kg,omitempty"`
	Dimensions       *string   `json:"dimensions,omitempty"`
	Fragile          bool      `json:"fragile"`
	Urgent           bool      `json:"urgent"`
	TrackingNumber   string    `json:"tracking_number"`
	Status           string    `json:"status"`
	Price            *float64  `json:"price,omitempty"`
	CurrentLocation  *string   `json:"current_location,omitempty"`
	FinalDestination string    `json:"final_destination"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ParcelListResponse struct {
	Parcels    []ParcelResponse `json:"parcels"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func ToParcelResponse(p *domainParcel.Parcel) *ParcelResponse {
	return &ParcelResponse{
		ID:               p.ID,
		SenderID:         p.SenderID,
		Description:      p.Description,
		WeightKg:         p.WeightKg,
		Dimensions:       p.Dimensions,
		Fragile:          p.Fragile,
		Urgent:           p.Urgent,
		TrackingNumber:   p.TrackingNumber,
		Status:           string(p.Status),
		Price:            p.Price,
		CurrentLocation:  p.CurrentLocation,
		FinalDestination: p.FinalDestination,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
