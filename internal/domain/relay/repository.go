package relay

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for checkpoint persistence.
// Checkpoints are never updated except to mark confirmation, and never deleted.
type Repository interface {
	Append(ctx context.Context, c *Checkpoint) error
	GetByID(ctx context.Context, checkpointID uuid.UUID) (*Checkpoint, error)
	Confirm(ctx context.Context, checkpointID uuid.UUID) error

	// ListByParcel returns the parcel's checkpoints in append order.
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]*Checkpoint, error)

	// GetOpenByParcel returns the newest unconfirmed checkpoint for the parcel,
	// or ErrNoOpenCheckpoint.
	GetOpenByParcel(ctx context.Context, parcelID uuid.UUID) (*Checkpoint, error)
}
