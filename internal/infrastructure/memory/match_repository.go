package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[uuid.UUID]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		matches: make(map[uuid.UUID]match.Match),
	}
}

func (r *MatchRepository) Create(_ context.Context, m *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches[m.ID] = *m
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID uuid.UUID) (*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	if !ok {
		return nil, match.ErrMatchNotFound
	}
	copied := m
	return &copied, nil
}

func (r *MatchRepository) Update(_ context.Context, m *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[m.ID]; !ok {
		return match.ErrMatchNotFound
	}
	r.matches[m.ID] = *m
	return nil
}

func (r *MatchRepository) ListByParcel(_ context.Context, parcelID uuid.UUID) ([]*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*match.Match
	for _, m := range r.matches {
		if m.ParcelID == parcelID {
			copied := m
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MatchRepository) ListPendingByCarrier(_ context.Context, carrierID uuid.UUID) ([]*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*match.Match
	for _, m := range r.matches {
		if m.CarrierID == carrierID && m.Status == match.StatusPending {
			copied := m
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MatchRepository) GetCurrentByParcel(_ context.Context, parcelID uuid.UUID) (*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matches {
		if m.ParcelID == parcelID && m.Status.IsCurrent() {
			copied := m
			return &copied, nil
		}
	}
	return nil, match.ErrMatchNotFound
}
