package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record owned by the user subsystem. Only the fields
// the auth flow needs are carried here; profile data stays in the user CRUD.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CtxUserKey is the echo context key the bearer middleware stores the
// authenticated account under.
const CtxUserKey = "authUser"

const (
	RoleUser      = "user"
	RoleCreator   = "creator"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)
