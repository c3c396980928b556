package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

type ParcelRepository struct {
	db *DB
}

func NewParcelRepository(db *DB) *ParcelRepository {
	return &ParcelRepository{db: db}
}

func (r *ParcelRepository) Create(ctx context.Context, p *parcel.Parcel) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	if p.Status == "" {
		p.Status = parcel.StatusPending
	}

	dbModel := toParcelModel(p)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return parcel.ErrDuplicateTracking
		}
		return fmt.Errorf("failed to create parcel: %w", err)
	}

	return nil
}

func (r *ParcelRepository) GetByID(ctx context.Context, parcelID uuid.UUID) (*parcel.Parcel, error) {
	var dbModel models.ParcelModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", parcelID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, parcel.ErrParcelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel: %w", err)
	}

	return toParcelEntity(&dbModel), nil
}

func (r *ParcelRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*parcel.Parcel, error) {
	var dbModel models.ParcelModel
	err := r.db.DB.WithContext(ctx).
		Where("tracking_number = ?", trackingNumber).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, parcel.ErrParcelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel by tracking number: %w", err)
	}

	return toParcelEntity(&dbModel), nil
}

func (r *ParcelRepository) Update(ctx context.Context, p *parcel.Parcel) error {
	p.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.ParcelModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"description":       p.Description,
			"weight_kg":         p.WeightKg,
			"dimensions":        p.Dimensions,
			"fragile":           p.Fragile,
			"urgent":            p.Urgent,
			"status":            string(p.Status),
			"price":             p.Price,
			"current_location":  p.CurrentLocation,
			"final_destination": p.FinalDestination,
			"updated_at":        p.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update parcel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return parcel.ErrParcelNotFound
	}

	return nil
}

func (r *ParcelRepository) UpdateStatus(ctx context.Context, parcelID uuid.UUID, status parcel.Status) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ParcelModel{}).
		Where("id = ?", parcelID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update parcel status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return parcel.ErrParcelNotFound
	}

	return nil
}

func (r *ParcelRepository) UpdateLocation(ctx context.Context, parcelID uuid.UUID, location string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ParcelModel{}).
		Where("id = ?", parcelID).
		Updates(map[string]interface{}{
			"current_location": location,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update parcel location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return parcel.ErrParcelNotFound
	}

	return nil
}

func (r *ParcelRepository) List(ctx context.Context, filter *parcel.Filter) ([]*parcel.Parcel, int64, error) {
	query := r.db.DB.WithContext(ctx).Model(&models.ParcelModel{})

	if filter.SenderID != nil {
		query = query.Where("sender_id = ?", *filter.SenderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count parcels: %w", err)
	}

	var dbModels []models.ParcelModel
	err := query.
		Order("created_at ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list parcels: %w", err)
	}

	parcels := make([]*parcel.Parcel, len(dbModels))
	for i := range dbModels {
		parcels[i] = toParcelEntity(&dbModels[i])
	}

	return parcels, total, nil
}
