package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/notification"
)

var errNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]notification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		notifications: make(map[uuid.UUID]notification.Notification),
	}
}

func (r *NotificationRepository) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) MarkDelivered(_ context.Context, notificationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[notificationID]
	if !ok {
		return errNotificationNotFound
	}
	now := time.Now()
	n.DeliveredAt = &now
	r.notifications[notificationID] = n
	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID uuid.UUID, limit int) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			copied := n
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
