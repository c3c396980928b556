package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationModel represents the database model for the notification
// audit trail
type NotificationModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParcelID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"type:varchar(64);not null"`
	Message     string     `gorm:"type:text;not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	DeliveredAt *time.Time `gorm:"type:timestamptz"`

	Recipient *UserModel   `gorm:"foreignKey:RecipientID"`
	Parcel    *ParcelModel `gorm:"foreignKey:ParcelID"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}
