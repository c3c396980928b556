package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractModel represents the database model for carrier contracts.
// Expiry is derived at read time, so only the two stored statuses exist.
type ContractModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CarrierID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status    string     `gorm:"type:varchar(32);not null;default:'pending_signature'"`
	StartDate time.Time  `gorm:"type:timestamptz;not null"`
	EndDate   *time.Time `gorm:"type:timestamptz"`
	SignedAt  *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`

	Carrier *UserModel `gorm:"foreignKey:CarrierID"`
}

func (ContractModel) TableName() string {
	return "contracts"
}
