package contract

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for contract persistence.
// Contracts are created by admins outside this service.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, contractID uuid.UUID) (*Contract, error)
	Update(ctx context.Context, c *Contract) error
	ListByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*Contract, error)
}
