package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcel-relay/internal/domain/contract"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

type ContractRepository struct {
	db *DB
}

func NewContractRepository(db *DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	if c.Status == "" {
		c.Status = contract.StatusPendingSignature
	}

	if err := r.db.DB.WithContext(ctx).Create(toContractModel(c)).Error; err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}

	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	var dbModel models.ContractModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", contractID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, contract.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	return toContractEntity(&dbModel), nil
}

func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract) error {
	c.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"status":     string(c.Status),
			"end_date":   c.EndDate,
			"signed_at":  c.SignedAt,
			"updated_at": c.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return contract.ErrContractNotFound
	}

	return nil
}

func (r *ContractRepository) ListByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*contract.Contract, error) {
	var dbModels []models.ContractModel
	err := r.db.DB.WithContext(ctx).
		Where("carrier_id = ?", carrierID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	contracts := make([]*contract.Contract, len(dbModels))
	for i := range dbModels {
		contracts[i] = toContractEntity(&dbModels[i])
	}
	return contracts, nil
}
