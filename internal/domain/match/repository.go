package match

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for match persistence
type Repository interface {
	Create(ctx context.Context, m *Match) error
	GetByID(ctx context.Context, matchID uuid.UUID) (*Match, error)
	Update(ctx context.Context, m *Match) error
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]*Match, error)
	ListPendingByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*Match, error)

	// GetCurrentByParcel returns the single ACCEPTED or ACCEPTED_RELAY match
	// for the parcel, or ErrMatchNotFound when no carrier holds it.
	GetCurrentByParcel(ctx context.Context, parcelID uuid.UUID) (*Match, error)
}
