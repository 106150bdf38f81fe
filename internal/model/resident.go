package model

import (
	"github.com/google/uuid"
)

const (
	ResidentStatusActive       = "active"
	ResidentStatusHospitalized = "hospitalized"
	ResidentStatusDischarged   = "discharged"
)

// ResidentBarcodePrefix marks wristband barcodes.
const ResidentBarcodePrefix = "RES-"

type Resident struct {
	Base
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	DateOfBirth           Date       `json:"date_of_birth" db:"date_of_birth"`
	Gender                string     `json:"gender" db:"gender"`
	RoomNumber            string     `json:"room_number" db:"room_number"`
	AdmissionDate         Date       `json:"admission_date" db:"admission_date"`
	Status                string     `json:"status" db:"status"`
	Barcode               string     `json:"barcode" db:"barcode"`
	EmergencyContactName  string     `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	GroupID               *uuid.UUID `json:"group_id,omitempty" db:"group_id"`
	Notes                 string     `json:"notes" db:"notes"`
}

func (r *Resident) FullName() string {
	return r.FirstName + " " + r.LastName
}

type ResidentFilter struct {
	Status  string     `form:"status"`
	GroupID *uuid.UUID `form:"-"`
	Search  string     `form:"search"`
	Pagination
}

type CreateResidentRequest struct {
	FirstName             string     `json:"first_name" binding:"required,notblank,min=2"`
	LastName              string     `json:"last_name" binding:"required,notblank,min=2"`
	DateOfBirth           Date       `json:"date_of_birth"`
	Gender                string     `json:"gender" binding:"required,oneof=male female other"`
	RoomNumber            string     `json:"room_number" binding:"required,notblank"`
	AdmissionDate         Date       `json:"admission_date"`
	Status                string     `json:"status" binding:"omitempty,oneof=active hospitalized discharged"`
	Barcode               string     `json:"barcode" binding:"omitempty,barcode"`
	EmergencyContactName  string     `json:"emergency_contact_name" binding:"max=200"`
	EmergencyContactPhone string     `json:"emergency_contact_phone" binding:"max=32"`
	GroupID               *uuid.UUID `json:"group_id"`
	Notes                 string     `json:"notes"`
}

type UpdateResidentRequest struct {
	FirstName             *string    `json:"first_name" binding:"omitempty,notblank,min=2"`
	LastName              *string    `json:"last_name" binding:"omitempty,notblank,min=2"`
	DateOfBirth           *Date      `json:"date_of_birth"`
	Gender                *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	RoomNumber            *string    `json:"room_number" binding:"omitempty,notblank"`
	AdmissionDate         *Date      `json:"admission_date"`
	Status                *string    `json:"status" binding:"omitempty,oneof=active hospitalized discharged"`
	EmergencyContactName  *string    `json:"emergency_contact_name" binding:"omitempty,max=200"`
	EmergencyContactPhone *string    `json:"emergency_contact_phone" binding:"omitempty,max=32"`
	GroupID               *uuid.UUID `json:"group_id"`
	Notes                 *string    `json:"notes"`
}
