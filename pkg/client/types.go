package client

import "github.com/careconnect/careconnect-api/internal/model"

// Wire types shared with the server.
type (
	User         = model.User
	TokenPair    = model.TokenPair
	AuthResponse = model.AuthResponse
	ListMeta     = model.ListMeta

	LoginRequest    = model.LoginRequest
	RegisterRequest = model.RegisterRequest

	Resident              = model.Resident
	CreateResidentRequest = model.CreateResidentRequest
	UpdateResidentRequest = model.UpdateResidentRequest

	Medication              = model.Medication
	CreateMedicationRequest = model.CreateMedicationRequest

	VerifyRequest     = model.VerifyRequest
	Verification      = model.Verification
	AdministerRequest = model.AdministerRequest
	Administration    = model.Administration

	Task                      = model.Task
	CreateTaskRequest         = model.CreateTaskRequest
	ReassignTaskRequest       = model.ReassignTaskRequest
	RejectReassignmentRequest = model.RejectReassignmentRequest

	Group = model.Group

	IncidentReport      = model.IncidentReport
	SubmitReportRequest = model.SubmitReportRequest

	MedicalHistoryRecord = model.MedicalHistoryRecord
)

// ResidentQuery filters ListResidents. Zero values are omitted.
type ResidentQuery struct {
	Status   string
	Search   string
	GroupID  string
	Page     int
	PageSize int
}

// TaskQuery filters ListTasks. AssignedTo accepts a user id or "me".
type TaskQuery struct {
	AssignedTo string
	Status     string
	Priority   string
	Overdue    bool
	Page       int
	PageSize   int
}

// MedicalHistoryQuery filters ListMedicalHistory.
type MedicalHistoryQuery struct {
	ResidentID string
	Type       string
	Status     string
}
