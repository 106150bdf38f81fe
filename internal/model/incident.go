package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	FormStatusActive   = "active"
	FormStatusArchived = "archived"
)

const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
)

const (
	ReportStatusSubmitted   = "submitted"
	ReportStatusUnderReview = "under_review"
	ReportStatusClosed      = "closed"
)

var reportTransitions = map[string][]string{
	ReportStatusSubmitted:   {ReportStatusUnderReview, ReportStatusClosed},
	ReportStatusUnderReview: {ReportStatusClosed},
}

// CanTransitionReport reports whether a report may move from one status to another.
func CanTransitionReport(from, to string) bool {
	for _, s := range reportTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type FormField struct {
	Key      string   `json:"key" binding:"required,snakecase,max=64"`
	Label    string   `json:"label" binding:"required,notblank"`
	Type     string   `json:"type" binding:"required,oneof=text textarea number date select checkbox"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty" binding:"omitempty,dive,notblank"`
}

// FormFields is stored as a JSONB column.
type FormFields []FormField

func (f FormFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

func (f *FormFields) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*f = FormFields{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FormFields", src)
	}
	return json.Unmarshal(b, f)
}

type FormTemplate struct {
	Base
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Fields      FormFields `json:"fields" db:"fields"`
	Status      string     `json:"status" db:"status"`
	CreatedBy   uuid.UUID  `json:"created_by" db:"created_by"`
}

type CreateFormRequest struct {
	Name        string      `json:"name" binding:"required,notblank,min=2,max=200"`
	Description string      `json:"description"`
	Fields      []FormField `json:"fields" binding:"required,min=1,dive"`
}

type UpdateFormRequest struct {
	Name        *string     `json:"name" binding:"omitempty,notblank,min=2,max=200"`
	Description *string     `json:"description"`
	Fields      []FormField `json:"fields" binding:"omitempty,min=1,dive"`
	Status      *string     `json:"status" binding:"omitempty,oneof=active archived"`
}

type IncidentReport struct {
	Base
	FormID       uuid.UUID       `json:"form_id" db:"form_id"`
	ResidentID   *uuid.UUID      `json:"resident_id,omitempty" db:"resident_id"`
	SubmittedBy  uuid.UUID       `json:"submitted_by" db:"submitted_by"`
	IncidentDate time.Time       `json:"incident_date" db:"incident_date"`
	Data         json.RawMessage `json:"data" db:"data"`
	Status       string          `json:"status" db:"status"`
	ReviewNotes  string          `json:"review_notes" db:"review_notes"`
	ReviewedBy   *uuid.UUID      `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

type IncidentReportFilter struct {
	FormID     *uuid.UUID
	ResidentID *uuid.UUID
	Status     string `form:"status"`
	Pagination
}

type SubmitReportRequest struct {
	ResidentID   *uuid.UUID      `json:"resident_id"`
	IncidentDate time.Time       `json:"incident_date" binding:"required"`
	Data         json.RawMessage `json:"data" binding:"required"`
}

type UpdateReportStatusRequest struct {
	Status      string `json:"status" binding:"required,oneof=submitted under_review closed"`
	ReviewNotes string `json:"review_notes" binding:"max=2000"`
}
