package model

import (
	"time"

	"github.com/google/uuid"
)

type WellnessReport struct {
	Base
	ResidentID       uuid.UUID `json:"resident_id" db:"resident_id"`
	ReportedBy       uuid.UUID `json:"reported_by" db:"reported_by"`
	ReportDate       Date      `json:"report_date" db:"report_date"`
	Mood             string    `json:"mood" db:"mood"`
	Appetite         string    `json:"appetite" db:"appetite"`
	SleepQuality     string    `json:"sleep_quality" db:"sleep_quality"`
	PainLevel        int       `json:"pain_level" db:"pain_level"`
	SystolicBP       *int      `json:"systolic_bp,omitempty" db:"systolic_bp"`
	DiastolicBP      *int      `json:"diastolic_bp,omitempty" db:"diastolic_bp"`
	HeartRate        *int      `json:"heart_rate,omitempty" db:"heart_rate"`
	TemperatureC     *float64  `json:"temperature_c,omitempty" db:"temperature_c"`
	RespiratoryRate  *int      `json:"respiratory_rate,omitempty" db:"respiratory_rate"`
	OxygenSaturation *int      `json:"oxygen_saturation,omitempty" db:"oxygen_saturation"`
	Notes            string    `json:"notes" db:"notes"`
}

type WellnessFilter struct {
	ResidentID uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Vitals are shared by create and update so range checks live in one place.
type Vitals struct {
	SystolicBP       *int     `json:"systolic_bp" binding:"omitempty,min=50,max=260"`
	DiastolicBP      *int     `json:"diastolic_bp" binding:"omitempty,min=30,max=160"`
	HeartRate        *int     `json:"heart_rate" binding:"omitempty,min=20,max=250"`
	TemperatureC     *float64 `json:"temperature_c" binding:"omitempty,min=30,max=45"`
	RespiratoryRate  *int     `json:"respiratory_rate" binding:"omitempty,min=4,max=60"`
	OxygenSaturation *int     `json:"oxygen_saturation" binding:"omitempty,min=50,max=100"`
}

type CreateWellnessReportRequest struct {
	ReportDate   Date   `json:"report_date"`
	Mood         string `json:"mood" binding:"required,oneof=happy content neutral anxious sad agitated"`
	Appetite     string `json:"appetite" binding:"required,oneof=good fair poor"`
	SleepQuality string `json:"sleep_quality" binding:"required,oneof=good fair poor"`
	PainLevel    int    `json:"pain_level" binding:"min=0,max=10"`
	Vitals
	Notes string `json:"notes"`
}

type UpdateWellnessReportRequest struct {
	Mood         *string `json:"mood" binding:"omitempty,oneof=happy content neutral anxious sad agitated"`
	Appetite     *string `json:"appetite" binding:"omitempty,oneof=good fair poor"`
	SleepQuality *string `json:"sleep_quality" binding:"omitempty,oneof=good fair poor"`
	PainLevel    *int    `json:"pain_level" binding:"omitempty,min=0,max=10"`
	Vitals
	Notes *string `json:"notes"`
}
