package models

import (
	"time"
)

// Role represents a user's role in the portal
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// IsStaff reports whether the role may act on applications (staff or admin)
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents a portal account (business owner, staff member, or admin)
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	ProfilePic   string    `json:"profile_pic" db:"profile_pic"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role"`
}

// LoginRequest is the payload for credential login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the payload for admin-initiated account creation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest is the payload for admin edits to an account
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required"`
}

// ResetPasswordRequest is the payload for an admin password reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest is the payload for a user's own profile update
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password"`
	ProfilePic string `json:"profile_pic"`
}
