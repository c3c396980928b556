package user

import (
	"time"

	"github.com/google/uuid"
)

// Role drives route access and transition capabilities
type Role string

const (
	RoleSender   Role = "sender"
	RoleMerchant Role = "merchant"
	RoleCarrier  Role = "carrier"
	RoleAdmin    Role = "admin"
)

// User is the identity collaborator. Account management and
// authentication live outside this service; we only resolve actors.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
