package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Method     string     `json:"method" db:"method"`
	Path       string     `json:"path" db:"path"`
	StatusCode int        `json:"status_code" db:"status_code"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	RequestID  string     `json:"request_id" db:"request_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionLogin  = "login"
	AuditActionLogout = "logout"
)

type AuditFilter struct {
	UserID     *uuid.UUID
	EntityType string `form:"entity_type"`
	Action     string `form:"action"`
	From       *time.Time
	To         *time.Time
	Pagination
}
