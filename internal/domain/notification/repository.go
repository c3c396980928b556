package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the notification audit trail
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	MarkDelivered(ctx context.Context, notificationID uuid.UUID) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error)
}

// Sink delivers notifications to an external transport, best effort.
// The dispatcher retries failed emissions with bounded backoff.
type Sink interface {
	Emit(ctx context.Context, n *Notification) error
}
