package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcel-relay/internal/domain/match"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

type MatchRepository struct {
	db *DB
}

func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m *match.Match) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	if err := r.db.DB.WithContext(ctx).Create(toMatchModel(m)).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID uuid.UUID) (*match.Match, error) {
	var dbModel models.MatchModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", matchID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, match.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return toMatchEntity(&dbModel), nil
}

func (r *MatchRepository) Update(ctx context.Context, m *match.Match) error {
	m.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.MatchModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"status":        string(m.Status),
			"reject_reason": m.RejectReason,
			"accepted_at":   m.AcceptedAt,
			"updated_at":    m.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update match: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return match.ErrMatchNotFound
	}

	return nil
}

func (r *MatchRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]*match.Match, error) {
	var dbModels []models.MatchModel
	err := r.db.DB.WithContext(ctx).
		Where("parcel_id = ?", parcelID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	matches := make([]*match.Match, len(dbModels))
	for i := range dbModels {
		matches[i] = toMatchEntity(&dbModels[i])
	}
	return matches, nil
}

func (r *MatchRepository) ListPendingByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*match.Match, error) {
	var dbModels []models.MatchModel
	err := r.db.DB.WithContext(ctx).
		Where("carrier_id = ? AND status = ?", carrierID, string(match.StatusPending)).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}

	matches := make([]*match.Match, len(dbModels))
	for i := range dbModels {
		matches[i] = toMatchEntity(&dbModels[i])
	}
	return matches, nil
}

func (r *MatchRepository) GetCurrentByParcel(ctx context.Context, parcelID uuid.UUID) (*match.Match, error) {
	var dbModel models.MatchModel
	err := r.db.DB.WithContext(ctx).
		Where("parcel_id = ? AND status IN ?", parcelID, []string{
			string(match.StatusAccepted),
			string(match.StatusAcceptedRelay),
		}).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, match.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current match: %w", err)
	}

	return toMatchEntity(&dbModel), nil
}
