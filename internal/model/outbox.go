package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Domain event types written to the outbox.
const (
	EventMedicationAdministered    = "MEDICATION_ADMINISTERED"
	EventIncidentReported          = "INCIDENT_REPORTED"
	EventTaskReassignmentRequested = "TASK_REASSIGNMENT_REQUESTED"
	EventTaskReassignmentAccepted  = "TASK_REASSIGNMENT_ACCEPTED"
	EventTaskReassignmentRejected  = "TASK_REASSIGNMENT_REJECTED"
	EventTaskOverdue               = "TASK_OVERDUE"
	EventPasswordResetRequested    = "PASSWORD_RESET_REQUESTED"
	EventCarePlanActivated         = "CARE_PLAN_ACTIVATED"
	EventResidentStatusChanged     = "RESIDENT_STATUS_CHANGED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Event payloads

type MedicationAdministeredPayload struct {
	AdministrationID uuid.UUID `json:"administration_id"`
	ResidentID       uuid.UUID `json:"resident_id"`
	MedicationID     uuid.UUID `json:"medication_id"`
	MedicationName   string    `json:"medication_name"`
	Status           string    `json:"status"`
	AdministeredBy   uuid.UUID `json:"administered_by"`
	AdministeredAt   time.Time `json:"administered_at"`
}

type IncidentReportedPayload struct {
	ReportID     uuid.UUID  `json:"report_id"`
	FormID       uuid.UUID  `json:"form_id"`
	FormName     string     `json:"form_name"`
	ResidentID   *uuid.UUID `json:"resident_id,omitempty"`
	SubmittedBy  uuid.UUID  `json:"submitted_by"`
	IncidentDate time.Time  `json:"incident_date"`
}

type TaskEventPayload struct {
	TaskID     uuid.UUID  `json:"task_id"`
	Title      string     `json:"title"`
	AssignedTo uuid.UUID  `json:"assigned_to"`
	ReassignTo *uuid.UUID `json:"reassign_to,omitempty"`
	ActorID    uuid.UUID  `json:"actor_id"`
	Reason     string     `json:"reason,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

type PasswordResetPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CarePlanActivatedPayload struct {
	CarePlanID uuid.UUID  `json:"care_plan_id"`
	ResidentID uuid.UUID  `json:"resident_id"`
	ArchivedID *uuid.UUID `json:"archived_id,omitempty"`
	ActorID    uuid.UUID  `json:"actor_id"`
}

type ResidentStatusPayload struct {
	ResidentID uuid.UUID `json:"resident_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    uuid.UUID `json:"actor_id"`
}
