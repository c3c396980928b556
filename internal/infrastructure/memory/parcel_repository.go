package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/parcel"
)

// ParcelRepository is a mutex-guarded map store. Used by tests and
// database-less local runs.
type ParcelRepository struct {
	mu      sync.RWMutex
	parcels map[uuid.UUID]parcel.Parcel
}

func NewParcelRepository() *ParcelRepository {
	return &ParcelRepository{
		parcels: make(map[uuid.UUID]parcel.Parcel),
	}
}

func (r *ParcelRepository) Create(_ context.Context, p *parcel.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parcels[p.ID]; exists {
		return parcel.ErrParcelAlreadyExists
	}
	for _, existing := range r.parcels {
		if existing.TrackingNumber == p.TrackingNumber {
			return parcel.ErrDuplicateTracking
		}
	}

	r.parcels[p.ID] = *p
	return nil
}

func (r *ParcelRepository) GetByID(_ context.Context, parcelID uuid.UUID) (*parcel.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parcels[parcelID]
	if !ok {
		return nil, parcel.ErrParcelNotFound
	}
	copied := p
	return &copied, nil
}

func (r *ParcelRepository) GetByTrackingNumber(_ context.Context, trackingNumber string) (*parcel.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parcels {
		if p.TrackingNumber == trackingNumber {
			copied := p
			return &copied, nil
		}
	}
	return nil, parcel.ErrParcelNotFound
}

func (r *ParcelRepository) Update(_ context.Context, p *parcel.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parcels[p.ID]; !ok {
		return parcel.ErrParcelNotFound
	}
	p.UpdatedAt = time.Now()
	r.parcels[p.ID] = *p
	return nil
}

func (r *ParcelRepository) UpdateStatus(_ context.Context, parcelID uuid.UUID, status parcel.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parcels[parcelID]
	if !ok {
		return parcel.ErrParcelNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.parcels[parcelID] = p
	return nil
}

func (r *ParcelRepository) UpdateLocation(_ context.Context, parcelID uuid.UUID, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parcels[parcelID]
	if !ok {
		return parcel.ErrParcelNotFound
	}
	p.CurrentLocation = &location
	p.UpdatedAt = time.Now()
	r.parcels[parcelID] = p
	return nil
}

func (r *ParcelRepository) List(_ context.Context, filter *parcel.Filter) ([]*parcel.Parcel, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*parcel.Parcel
	for _, p := range r.parcels {
		if filter.SenderID != nil && p.SenderID != *filter.SenderID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		copied := p
		all = append(all, &copied)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
