package parcel

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List results
type Filter struct {
	SenderID *uuid.UUID
	Status   *Status
	Page     int
	PageSize int
}

// Repository defines the interface for parcel persistence
type Repository interface {
	Create(ctx context.Context, p *Parcel) error
	GetByID(ctx context.Context, parcelID uuid.UUID) (*Parcel, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Parcel, error)
	Update(ctx context.Context, p *Parcel) error
	UpdateStatus(ctx context.Context, parcelID uuid.UUID, status Status) error
	UpdateLocation(ctx context.Context, parcelID uuid.UUID, location string) error
	List(ctx context.Context, filter *Filter) ([]*Parcel, int64, error)
}
