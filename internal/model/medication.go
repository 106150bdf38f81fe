package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MedicationStatusActive       = "active"
	MedicationStatusOnHold       = "on_hold"
	MedicationStatusDiscontinued = "discontinued"
)

const MedicationBarcodePrefix = "MED-"

// Frequencies
const (
	FrequencyOnceDaily       = "once_daily"
	FrequencyTwiceDaily      = "twice_daily"
	FrequencyThreeTimesDaily = "three_times_daily"
	FrequencyFourTimesDaily  = "four_times_daily"
	FrequencyEvery4Hours     = "every_4_hours"
	FrequencyEvery6Hours     = "every_6_hours"
	FrequencyEvery8Hours     = "every_8_hours"
	FrequencyEvery12Hours    = "every_12_hours"
	FrequencyWeekly          = "weekly"
	FrequencyAsNeeded        = "as_needed"
)

var minIntervals = map[string]time.Duration{
	FrequencyOnceDaily:       20 * time.Hour,
	FrequencyTwiceDaily:      10 * time.Hour,
	FrequencyThreeTimesDaily: 6 * time.Hour,
	FrequencyFourTimesDaily:  4 * time.Hour,
	FrequencyEvery4Hours:     3 * time.Hour,
	FrequencyEvery6Hours:     5 * time.Hour,
	FrequencyEvery8Hours:     7 * time.Hour,
	FrequencyEvery12Hours:    11 * time.Hour,
	FrequencyWeekly:          6 * 24 * time.Hour,
}

// MinDoseInterval is the shortest gap allowed between two given doses.
// as_needed and unknown frequencies have no limit.
func MinDoseInterval(frequency string) (time.Duration, bool) {
	d, ok := minIntervals[frequency]
	return d, ok
}

type Medication struct {
	Base
	ResidentID   uuid.UUID `json:"resident_id" db:"resident_id"`
	Name         string    `json:"name" db:"name"`
	Dosage       string    `json:"dosage" db:"dosage"`
	Route        string    `json:"route" db:"route"`
	Frequency    string    `json:"frequency" db:"frequency"`
	StartDate    Date      `json:"start_date" db:"start_date"`
	EndDate      *Date     `json:"end_date,omitempty" db:"end_date"`
	Instructions string    `json:"instructions" db:"instructions"`
	PrescribedBy string    `json:"prescribed_by" db:"prescribed_by"`
	Barcode      string    `json:"barcode" db:"barcode"`
	Status       string    `json:"status" db:"status"`
}

// ActiveOn reports whether day falls within the prescription window.
func (m *Medication) ActiveOn(day Date) bool {
	if day.Before(m.StartDate) {
		return false
	}
	if m.EndDate != nil && day.After(*m.EndDate) {
		return false
	}
	return true
}

type CreateMedicationRequest struct {
	Name         string `json:"name" binding:"required,notblank,min=2"`
	Dosage       string `json:"dosage" binding:"required,notblank"`
	Route        string `json:"route" binding:"required,oneof=oral topical injection inhalation sublingual other"`
	Frequency    string `json:"frequency" binding:"required,oneof=once_daily twice_daily three_times_daily four_times_daily every_4_hours every_6_hours every_8_hours every_12_hours weekly as_needed"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
	Instructions string `json:"instructions"`
	PrescribedBy string `json:"prescribed_by" binding:"required,notblank"`
	Barcode      string `json:"barcode" binding:"omitempty,barcode"`
	Status       string `json:"status" binding:"omitempty,oneof=active on_hold discontinued"`
}

type UpdateMedicationRequest struct {
	Name         *string `json:"name" binding:"omitempty,notblank,min=2"`
	Dosage       *string `json:"dosage" binding:"omitempty,notblank"`
	Route        *string `json:"route" binding:"omitempty,oneof=oral topical injection inhalation sublingual other"`
	Frequency    *string `json:"frequency" binding:"omitempty,oneof=once_daily twice_daily three_times_daily four_times_daily every_4_hours every_6_hours every_8_hours every_12_hours weekly as_needed"`
	StartDate    *Date   `json:"start_date"`
	EndDate      *Date   `json:"end_date"`
	Instructions *string `json:"instructions"`
	PrescribedBy *string `json:"prescribed_by" binding:"omitempty,notblank"`
	Status       *string `json:"status" binding:"omitempty,oneof=active on_hold discontinued"`
}
