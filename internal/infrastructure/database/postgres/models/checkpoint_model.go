package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckpointModel represents the database model for relay checkpoints
type CheckpointModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ParcelID         uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_checkpoint_parcel_code"`
	Location         string     `gorm:"type:text;not null"`
	EventType        string     `gorm:"type:varchar(32);not null;default:'transfer'"`
	NextCarrierID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	TransferCode     string     `gorm:"type:varchar(6);not null;uniqueIndex:idx_checkpoint_parcel_code"`
	Notes            *string    `gorm:"type:text"`
	EstimatedArrival *time.Time `gorm:"type:timestamptz"`
	Confirmed        bool       `gorm:"not null;default:false;index"`
	ConfirmedAt      *time.Time `gorm:"type:timestamptz"`
	CreatedAt        time.Time  `gorm:"not null;index"`

	Parcel      *ParcelModel `gorm:"foreignKey:ParcelID"`
	NextCarrier *UserModel   `gorm:"foreignKey:NextCarrierID"`
}

func (CheckpointModel) TableName() string {
	return "relay_checkpoints"
}
