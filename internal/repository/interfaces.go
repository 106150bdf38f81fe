package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Transactor runs fn in a transaction carried on the context passed to it.
// Repository calls made with that context join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int64, error)
		ListByRole(ctx context.Context, role string) ([]*model.User, error)
	}

	TokenRepository interface {
		CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error
		GetRefreshToken(ctx context.Context, id uuid.UUID) (*model.RefreshToken, error)
		// MarkRefreshTokenUsed returns false when the token was already used or revoked.
		MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
		RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error
		CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
		GetResetTokenByHash(ctx context.Context, hash string) (*model.PasswordResetToken, error)
		MarkResetTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error
		DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	}

	GroupRepository interface {
		Create(ctx context.Context, group *model.Group) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
		GetByName(ctx context.Context, name string) (*model.Group, error)
		Update(ctx context.Context, group *model.Group) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Group, error)
		AddMember(ctx context.Context, groupID, userID uuid.UUID) error
		RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
		ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.User, error)
	}

	ResidentRepository interface {
		Create(ctx context.Context, resident *model.Resident) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Resident, error)
		GetByBarcode(ctx context.Context, barcode string) (*model.Resident, error)
		Update(ctx context.Context, resident *model.Resident) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.ResidentFilter) ([]*model.Resident, int64, error)
		ListAll(ctx context.Context, status string) ([]*model.Resident, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		GetByBarcode(ctx context.Context, barcode string) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByResident(ctx context.Context, residentID uuid.UUID, status string) ([]*model.Medication, error)
	}

	AdministrationRepository interface {
		Create(ctx context.Context, administration *model.Administration) error
		LastGiven(ctx context.Context, medicationID uuid.UUID) (*model.Administration, error)
		List(ctx context.Context, filter *model.AdministrationFilter) ([]*model.Administration, error)
	}

	MedicalHistoryRepository interface {
		Create(ctx context.Context, record *model.MedicalHistoryRecord) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.MedicalHistoryRecord, error)
		Update(ctx context.Context, record *model.MedicalHistoryRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryRecord, error)
		ActiveAllergies(ctx context.Context, residentID uuid.UUID) ([]*model.MedicalHistoryRecord, error)
	}

	CarePlanRepository interface {
		Create(ctx context.Context, plan *model.CarePlan) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.CarePlan, error)
		Update(ctx context.Context, plan *model.CarePlan) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByResident(ctx context.Context, residentID uuid.UUID) ([]*model.CarePlan, error)
		// ArchiveActive archives the resident's active plan other than exceptID and returns its id.
		ArchiveActive(ctx context.Context, residentID, exceptID uuid.UUID) (*uuid.UUID, error)
	}

	WellnessRepository interface {
		Create(ctx context.Context, report *model.WellnessReport) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.WellnessReport, error)
		Update(ctx context.Context, report *model.WellnessReport) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.WellnessFilter) ([]*model.WellnessReport, error)
	}

	FormRepository interface {
		Create(ctx context.Context, form *model.FormTemplate) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.FormTemplate, error)
		Update(ctx context.Context, form *model.FormTemplate) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, status string) ([]*model.FormTemplate, error)
		CountReports(ctx context.Context, formID uuid.UUID) (int64, error)
	}

	IncidentReportRepository interface {
		Create(ctx context.Context, report *model.IncidentReport) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.IncidentReport, error)
		UpdateStatus(ctx context.Context, report *model.IncidentReport) error
		List(ctx context.Context, filter *model.IncidentReportFilter) ([]*model.IncidentReport, int64, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
		Update(ctx context.Context, task *model.Task) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, int64, error)
		ListOverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]*model.Task, error)
		MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	ActivityRepository interface {
		Create(ctx context.Context, activity *model.Activity) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
		Update(ctx context.Context, activity *model.Activity) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.ActivityFilter) ([]*model.Activity, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// LockPending must run inside WithinTx; rows stay locked until the transaction ends.
		LockPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, retryAt time.Time, errMsg string) error
		MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error)
		DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
