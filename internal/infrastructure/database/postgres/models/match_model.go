package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchModel represents the database model for matches
type MatchModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ParcelID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	CarrierID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	RideID       *uuid.UUID `gorm:"type:uuid"`
	Status       string     `gorm:"type:varchar(32);not null;default:'pending';index"`
	Segment      int        `gorm:"type:integer;not null;default:0"`
	RejectReason *string    `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null;index"`
	UpdatedAt    time.Time  `gorm:"not null"`
	AcceptedAt   *time.Time `gorm:"type:timestamptz"`

	Parcel  *ParcelModel `gorm:"foreignKey:ParcelID"`
	Carrier *UserModel   `gorm:"foreignKey:CarrierID"`
}

func (MatchModel) TableName() string {
	return "matches"
}
