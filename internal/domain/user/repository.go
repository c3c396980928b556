package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user lookups
type Repository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
