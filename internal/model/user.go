package model

import "time"

// Roles stored in auth_users.role and carried in the access token.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// User represents an auth identity as stored in the auth_users table.
type User struct {
	ID           uint64    // auth_users.id
	Email        string    // auth_users.email
	PasswordHash string    // auth_users.password_hash
	Role         string    // auth_users.role
	IsActive     bool      // auth_users.is_active
	CreatedAt    time.Time // auth_users.created_at
	UpdatedAt    time.Time // auth_users.updated_at
}
