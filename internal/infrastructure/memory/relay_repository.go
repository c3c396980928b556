package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/relay"
)

type RelayRepository struct {
	mu          sync.RWMutex
	checkpoints map[uuid.UUID]relay.Checkpoint
}

func NewRelayRepository() *RelayRepository {
	return &RelayRepository{
		checkpoints: make(map[uuid.UUID]relay.Checkpoint),
	}
}

func (r *RelayRepository) Append(_ context.Context, c *relay.Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.checkpoints {
		if existing.ParcelID == c.ParcelID && existing.TransferCode == c.TransferCode {
			return relay.ErrDuplicateTransferCode
		}
	}

	r.checkpoints[c.ID] = *c
	return nil
}

func (r *RelayRepository) GetByID(_ context.Context, checkpointID uuid.UUID) (*relay.Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.checkpoints[checkpointID]
	if !ok {
		return nil, relay.ErrCheckpointNotFound
	}
	copied := c
	return &copied, nil
}

func (r *RelayRepository) Confirm(_ context.Context, checkpointID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.checkpoints[checkpointID]
	if !ok {
		return relay.ErrCheckpointNotFound
	}
	if c.Confirmed {
		return relay.ErrAlreadyConfirmed
	}

	now := time.Now()
	c.Confirmed = true
	c.ConfirmedAt = &now
	r.checkpoints[checkpointID] = c
	return nil
}

func (r *RelayRepository) ListByParcel(_ context.Context, parcelID uuid.UUID) ([]*relay.Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*relay.Checkpoint
	for _, c := range r.checkpoints {
		if c.ParcelID == parcelID {
			copied := c
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RelayRepository) GetOpenByParcel(_ context.Context, parcelID uuid.UUID) (*relay.Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var newest *relay.Checkpoint
	for _, c := range r.checkpoints {
		if c.ParcelID != parcelID || c.Confirmed {
			continue
		}
		copied := c
		if newest == nil || copied.CreatedAt.After(newest.CreatedAt) {
			newest = &copied
		}
	}

	if newest == nil {
		return nil, relay.ErrNoOpenCheckpoint
	}
	return newest, nil
}
