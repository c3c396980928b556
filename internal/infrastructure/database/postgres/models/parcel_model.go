package models

import (
	"time"

	"github.com/google/uuid"
)

// ParcelModel represents the database model for parcels
type ParcelModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SenderID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Description      string     `gorm:"type:text;not null"`
	WeightKg         *float64   `gorm:"type:decimal(8,2)"`
	Dimensions       *string    `gorm:"type:varchar(100)"`
	Fragile          bool       `gorm:"not null;default:false"`
	Urgent           bool       `gorm:"not null;default:false"`
	TrackingNumber   string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Status           string     `gorm:"type:varchar(32);not null;default:'pending';index"`
	Price            *float64   `gorm:"type:decimal(10,2)"`
	CurrentLocation  *string    `gorm:"type:text"`
	FinalDestination string     `gorm:"type:text;not null"`
	CreatedAt        time.Time  `gorm:"not null;index"`
	UpdatedAt        time.Time  `gorm:"not null"`

	Sender *UserModel `gorm:"foreignKey:SenderID"`
}

func (ParcelModel) TableName() string {
	return "parcels"
}
