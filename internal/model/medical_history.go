package model

import (
	"github.com/google/uuid"
)

const (
	HistoryTypeCondition      = "condition"
	HistoryTypeAllergy        = "allergy"
	HistoryTypeChronicIllness = "chronic_illness"
	HistoryTypeSurgical       = "surgical"
	HistoryTypeImmunization   = "immunization"
)

var HistoryTypes = []string{
	HistoryTypeCondition, HistoryTypeAllergy, HistoryTypeChronicIllness,
	HistoryTypeSurgical, HistoryTypeImmunization,
}

const (
	HistoryStatusActive   = "active"
	HistoryStatusResolved = "resolved"
)

type MedicalHistoryRecord struct {
	Base
	ResidentID  uuid.UUID `json:"resident_id" db:"resident_id"`
	Type        string    `json:"type" db:"type"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Severity    *string   `json:"severity,omitempty" db:"severity"`
	Reaction    string    `json:"reaction" db:"reaction"`
	OccurredOn  *Date     `json:"occurred_on,omitempty" db:"occurred_on"`
	Status      string    `json:"status" db:"status"`
	Provider    string    `json:"provider" db:"provider"`
	Notes       string    `json:"notes" db:"notes"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
}

type MedicalHistoryFilter struct {
	ResidentID *uuid.UUID
	Type       string `form:"type"`
	Status     string `form:"status"`
}

// MedicalHistorySummary groups a resident's records by type.
type MedicalHistorySummary struct {
	ResidentID uuid.UUID                          `json:"resident_id"`
	Records    map[string][]*MedicalHistoryRecord `json:"records"`
	Total      int                                `json:"total"`
}

type CreateMedicalHistoryRequest struct {
	ResidentID  uuid.UUID `json:"resident_id" binding:"required"`
	Type        string    `json:"type" binding:"required,oneof=condition allergy chronic_illness surgical immunization"`
	Name        string    `json:"name" binding:"required,notblank,min=2"`
	Description string    `json:"description"`
	Severity    *string   `json:"severity" binding:"omitempty,oneof=mild moderate severe"`
	Reaction    string    `json:"reaction"`
	OccurredOn  *Date     `json:"occurred_on"`
	Status      string    `json:"status" binding:"omitempty,oneof=active resolved"`
	Provider    string    `json:"provider"`
	Notes       string    `json:"notes"`
}

type UpdateMedicalHistoryRequest struct {
	Type        *string `json:"type" binding:"omitempty,oneof=condition allergy chronic_illness surgical immunization"`
	Name        *string `json:"name" binding:"omitempty,notblank,min=2"`
	Description *string `json:"description"`
	Severity    *string `json:"severity" binding:"omitempty,oneof=mild moderate severe"`
	Reaction    *string `json:"reaction"`
	OccurredOn  *Date   `json:"occurred_on"`
	Status      *string `json:"status" binding:"omitempty,oneof=active resolved"`
	Provider    *string `json:"provider"`
	Notes       *string `json:"notes"`
}
