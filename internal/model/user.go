package model

import (
	"strings"
	"time"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Role constants
const (
	RoleAdmin     = "admin"
	RoleNurse     = "nurse"
	RoleCaregiver = "caregiver"
	RoleStaff     = "staff"
)

// User represents a facility staff account
type User struct {
	Base
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	FirstName           string     `json:"first_name" db:"first_name"`
	LastName            string     `json:"last_name" db:"last_name"`
	Role                string     `json:"role" db:"role"`
	Status              string     `json:"status" db:"status"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty" db:"locked_until"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether a lockout is still in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserFilter represents user search parameters
type UserFilter struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
	Pagination
}

// CreateUserRequest is used by admins to create accounts of any role.
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"first_name" binding:"required,notblank,min=2"`
	LastName  string  `json:"last_name" binding:"required,notblank,min=2"`
	Role      string  `json:"role" binding:"required,oneof=admin nurse caregiver staff"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,notblank,min=2"`
	LastName  *string `json:"last_name" binding:"omitempty,notblank,min=2"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin nurse caregiver staff"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
}
