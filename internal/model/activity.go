package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MaxActivityWindow bounds calendar queries.
const MaxActivityWindow = 366 * 24 * time.Hour

type Activity struct {
	Base
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Location    string         `json:"location" db:"location"`
	Category    string         `json:"category" db:"category"`
	StartTime   time.Time      `json:"start_time" db:"start_time"`
	EndTime     time.Time      `json:"end_time" db:"end_time"`
	AllDay      bool           `json:"all_day" db:"all_day"`
	GroupID     *uuid.UUID     `json:"group_id,omitempty" db:"group_id"`
	ResidentIDs pq.StringArray `json:"resident_ids" db:"resident_ids"`
	CreatedBy   uuid.UUID      `json:"created_by" db:"created_by"`
}

type ActivityFilter struct {
	From    time.Time
	To      time.Time
	GroupID *uuid.UUID
}

type CreateActivityRequest struct {
	Title       string      `json:"title" binding:"required,notblank,min=2,max=200"`
	Description string      `json:"description"`
	Location    string      `json:"location" binding:"max=200"`
	Category    string      `json:"category" binding:"required,oneof=social exercise medical meal outing other"`
	StartTime   time.Time   `json:"start_time" binding:"required"`
	EndTime     time.Time   `json:"end_time" binding:"required"`
	AllDay      bool        `json:"all_day"`
	GroupID     *uuid.UUID  `json:"group_id"`
	ResidentIDs []uuid.UUID `json:"resident_ids"`
}

type UpdateActivityRequest struct {
	Title       *string     `json:"title" binding:"omitempty,notblank,min=2,max=200"`
	Description *string     `json:"description"`
	Location    *string     `json:"location" binding:"omitempty,max=200"`
	Category    *string     `json:"category" binding:"omitempty,oneof=social exercise medical meal outing other"`
	StartTime   *time.Time  `json:"start_time"`
	EndTime     *time.Time  `json:"end_time"`
	AllDay      *bool       `json:"all_day"`
	GroupID     *uuid.UUID  `json:"group_id"`
	ResidentIDs []uuid.UUID `json:"resident_ids"`
}

// UUIDStrings converts ids for storage in a uuid[] column.
func UUIDStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
