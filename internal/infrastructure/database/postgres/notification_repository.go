package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/notification"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := r.db.DB.WithContext(ctx).Create(toNotificationModel(n)).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) MarkDelivered(ctx context.Context, notificationID uuid.UUID) error {
	now := time.Now()
	result := r.db.DB.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", notificationID).
		Update("delivered_at", &now)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", result.Error)
	}

	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var dbModels []models.NotificationModel
	err := r.db.DB.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*notification.Notification, len(dbModels))
	for i := range dbModels {
		notifications[i] = toNotificationEntity(&dbModels[i])
	}
	return notifications, nil
}
