package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AdministrationGiven   = "given"
	AdministrationRefused = "refused"
	AdministrationHeld    = "held"
	AdministrationMissed  = "missed"
)

// Administration is one entry in the medication administration record.
type Administration struct {
	ID             uuid.UUID `json:"id" db:"id"`
	MedicationID   uuid.UUID `json:"medication_id" db:"medication_id"`
	ResidentID     uuid.UUID `json:"resident_id" db:"resident_id"`
	AdministeredBy uuid.UUID `json:"administered_by" db:"administered_by"`
	AdministeredAt time.Time `json:"administered_at" db:"administered_at"`
	Status         string    `json:"status" db:"status"`
	DoseGiven      string    `json:"dose_given" db:"dose_given"`
	Notes          string    `json:"notes" db:"notes"`
	ScanVerified   bool      `json:"scan_verified" db:"scan_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Populated by record listings.
	MedicationName     string `json:"medication_name,omitempty" db:"medication_name"`
	MedicationDosage   string `json:"medication_dosage,omitempty" db:"medication_dosage"`
	AdministeredByName string `json:"administered_by_name,omitempty" db:"administered_by_name"`
}

type AdministrationFilter struct {
	ResidentID   uuid.UUID
	MedicationID *uuid.UUID
	From         *time.Time
	To           *time.Time
}

type ScanRequest struct {
	ResidentBarcode string `json:"resident_barcode" binding:"required,barcode"`
}

type ScanResult struct {
	Resident    *Resident     `json:"resident"`
	Medications []*Medication `json:"medications"`
}

type VerifyRequest struct {
	ResidentBarcode   string `json:"resident_barcode" binding:"required,barcode"`
	MedicationBarcode string `json:"medication_barcode" binding:"required,barcode"`
}

type Verification struct {
	Matched     bool        `json:"matched"`
	Resident    *Resident   `json:"resident,omitempty"`
	Medication  *Medication `json:"medication,omitempty"`
	Reasons     []string    `json:"reasons"`
	LastGivenAt *time.Time  `json:"last_given_at,omitempty"`
	NextDueAt   *time.Time  `json:"next_due_at,omitempty"`
}

type AdministerRequest struct {
	ResidentBarcode   string `json:"resident_barcode" binding:"required,barcode"`
	MedicationBarcode string `json:"medication_barcode" binding:"required,barcode"`
	Status            string `json:"status" binding:"required,oneof=given refused held missed"`
	DoseGiven         string `json:"dose_given" binding:"max=100"`
	Notes             string `json:"notes" binding:"max=1000"`
}
