package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/contract"
)

type ContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]contract.Contract
}

func NewContractRepository() *ContractRepository {
	return &ContractRepository{
		contracts: make(map[uuid.UUID]contract.Contract),
	}
}

func (r *ContractRepository) Create(_ context.Context, c *contract.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contracts[c.ID] = *c
	return nil
}

func (r *ContractRepository) GetByID(_ context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[contractID]
	if !ok {
		return nil, contract.ErrContractNotFound
	}
	copied := c
	return &copied, nil
}

func (r *ContractRepository) Update(_ context.Context, c *contract.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[c.ID]; !ok {
		return contract.ErrContractNotFound
	}
	r.contracts[c.ID] = *c
	return nil
}

func (r *ContractRepository) ListByCarrier(_ context.Context, carrierID uuid.UUID) ([]*contract.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*contract.Contract
	for _, c := range r.contracts {
		if c.CarrierID == carrierID {
			copied := c
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
