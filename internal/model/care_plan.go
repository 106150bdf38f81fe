package model

import (
	"github.com/google/uuid"
)

const (
	CarePlanStatusDraft    = "draft"
	CarePlanStatusActive   = "active"
	CarePlanStatusArchived = "archived"
)

type CarePlan struct {
	Base
	ResidentID      uuid.UUID `json:"resident_id" db:"resident_id"`
	Title           string    `json:"title" db:"title"`
	MedicalNeeds    string    `json:"medical_needs" db:"medical_needs"`
	DietaryNeeds    string    `json:"dietary_needs" db:"dietary_needs"`
	AssistanceNeeds string    `json:"assistance_needs" db:"assistance_needs"`
	Goals           string    `json:"goals" db:"goals"`
	StartDate       Date      `json:"start_date" db:"start_date"`
	ReviewDate      *Date     `json:"review_date,omitempty" db:"review_date"`
	Status          string    `json:"status" db:"status"`
	CreatedBy       uuid.UUID `json:"created_by" db:"created_by"`
}

type CreateCarePlanRequest struct {
	Title           string `json:"title" binding:"required,notblank,min=2"`
	MedicalNeeds    string `json:"medical_needs"`
	DietaryNeeds    string `json:"dietary_needs"`
	AssistanceNeeds string `json:"assistance_needs"`
	Goals           string `json:"goals"`
	StartDate       Date   `json:"start_date"`
	ReviewDate      *Date  `json:"review_date"`
	Status          string `json:"status" binding:"omitempty,oneof=draft active"`
}

type UpdateCarePlanRequest struct {
	Title           *string `json:"title" binding:"omitempty,notblank,min=2"`
	MedicalNeeds    *string `json:"medical_needs"`
	DietaryNeeds    *string `json:"dietary_needs"`
	AssistanceNeeds *string `json:"assistance_needs"`
	Goals           *string `json:"goals"`
	StartDate       *Date   `json:"start_date"`
	ReviewDate      *Date   `json:"review_date"`
}
