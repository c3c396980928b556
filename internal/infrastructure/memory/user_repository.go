package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"parcel-relay/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]user.User),
	}
}

// Seed registers users directly. Local runs and tests.
func (r *UserRepository) Seed(users ...*user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u.ID] = *u
	}
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, user.ErrUserNotFound
}
