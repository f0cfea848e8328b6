package entities

import (
	"strings"
	"time"
)

// Role governs which operations an operator may perform
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleApprover    Role = "approver"
	RoleStorekeeper Role = "storekeeper"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleStorekeeper:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve or reject indents
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleApprover
}

// User is an operator of the system
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a validated user holding an already hashed password
func NewUser(username, name string, role Role, passwordHash string, at time.Time) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, NewValidationError("username", nil, "username cannot be empty")
	}
	if !role.Valid() {
		return nil, NewValidationError("role", role, "unknown role")
	}
	if passwordHash == "" {
		return nil, NewValidationError("password", nil, "password cannot be empty")
	}
	return &User{
		ID:           NewID(),
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    at,
	}, nil
}
