package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcel-relay/internal/domain/relay"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

type RelayRepository struct {
	db *DB
}

func NewRelayRepository(db *DB) *RelayRepository {
	return &RelayRepository{db: db}
}

func (r *RelayRepository) Append(ctx context.Context, c *relay.Checkpoint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if err := r.db.DB.WithContext(ctx).Create(toCheckpointModel(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return relay.ErrDuplicateTransferCode
		}
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}

	return nil
}

func (r *RelayRepository) GetByID(ctx context.Context, checkpointID uuid.UUID) (*relay.Checkpoint, error) {
	var dbModel models.CheckpointModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", checkpointID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, relay.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return toCheckpointEntity(&dbModel), nil
}

func (r *RelayRepository) Confirm(ctx context.Context, checkpointID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.CheckpointModel{}).
		Where("id = ? AND confirmed = false", checkpointID).
		Updates(map[string]interface{}{
			"confirmed":    true,
			"confirmed_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to confirm checkpoint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return relay.ErrAlreadyConfirmed
	}

	return nil
}

func (r *RelayRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]*relay.Checkpoint, error) {
	var dbModels []models.CheckpointModel
	err := r.db.DB.WithContext(ctx).
		Where("parcel_id = ?", parcelID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	checkpoints := make([]*relay.Checkpoint, len(dbModels))
	for i := range dbModels {
		checkpoints[i] = toCheckpointEntity(&dbModels[i])
	}
	return checkpoints, nil
}

func (r *RelayRepository) GetOpenByParcel(ctx context.Context, parcelID uuid.UUID) (*relay.Checkpoint, error) {
	var dbModel models.CheckpointModel
	err := r.db.DB.WithContext(ctx).
		Where("parcel_id = ? AND confirmed = false", parcelID).
		Order("created_at DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, relay.ErrNoOpenCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open checkpoint: %w", err)
	}

	return toCheckpointEntity(&dbModel), nil
}
