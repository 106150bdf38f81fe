// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/careconnect/careconnect-api/internal/model"
)

// Transactor runs fn directly on the given context.
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) ListByRole(ctx context.Context, role string) ([]*model.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

type TokenRepository struct{ mock.Mock }

func (m *TokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *TokenRepository) GetRefreshToken(ctx context.Context, id uuid.UUID) (*model.RefreshToken, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *TokenRepository) MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *TokenRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *TokenRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *TokenRepository) GetResetTokenByHash(ctx context.Context, hash string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, hash)
	t, _ := args.Get(0).(*model.PasswordResetToken)
	return t, args.Error(1)
}

func (m *TokenRepository) MarkResetTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type GroupRepository struct{ mock.Mock }

func (m *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*model.Group)
	return g, args.Error(1)
}

func (m *GroupRepository) GetByName(ctx context.Context, name string) (*model.Group, error) {
	args := m.Called(ctx, name)
	g, _ := args.Get(0).(*model.Group)
	return g, args.Error(1)
}

func (m *GroupRepository) Update(ctx context.Context, group *model.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]*model.Group)
	return g, args.Error(1)
}

func (m *GroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *GroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.User, error) {
	args := m.Called(ctx, groupID)
	u, _ := args.Get(0).([]*model.User)
	return u, args.Error(1)
}

type ResidentRepository struct{ mock.Mock }

func (m *ResidentRepository) Create(ctx context.Context, resident *model.Resident) error {
	return m.Called(ctx, resident).Error(0)
}

func (m *ResidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Resident, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Resident)
	return r, args.Error(1)
}

func (m *ResidentRepository) GetByBarcode(ctx context.Context, barcode string) (*model.Resident, error) {
	args := m.Called(ctx, barcode)
	r, _ := args.Get(0).(*model.Resident)
	return r, args.Error(1)
}

func (m *ResidentRepository) Update(ctx context.Context, resident *model.Resident) error {
	return m.Called(ctx, resident).Error(0)
}

func (m *ResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ResidentRepository) List(ctx context.Context, filter *model.ResidentFilter) ([]*model.Resident, int64, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*model.Resident)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *ResidentRepository) ListAll(ctx context.Context, status string) ([]*model.Resident, error) {
	args := m.Called(ctx, status)
	r, _ := args.Get(0).([]*model.Resident)
	return r, args.Error(1)
}

type MedicationRepository struct{ mock.Mock }

func (m *MedicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	return m.Called(ctx, medication).Error(0)
}

func (m *MedicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	args := m.Called(ctx, id)
	med, _ := args.Get(0).(*model.Medication)
	return med, args.Error(1)
}

func (m *MedicationRepository) GetByBarcode(ctx context.Context, barcode string) (*model.Medication, error) {
	args := m.Called(ctx, barcode)
	med, _ := args.Get(0).(*model.Medication)
	return med, args.Error(1)
}

func (m *MedicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	return m.Called(ctx, medication).Error(0)
}

func (m *MedicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MedicationRepository) ListByResident(ctx context.Context, residentID uuid.UUID, status string) ([]*model.Medication, error) {
	args := m.Called(ctx, residentID, status)
	meds, _ := args.Get(0).([]*model.Medication)
	return meds, args.Error(1)
}

type AdministrationRepository struct{ mock.Mock }

func (m *AdministrationRepository) Create(ctx context.Context, a *model.Administration) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AdministrationRepository) LastGiven(ctx context.Context, medicationID uuid.UUID) (*model.Administration, error) {
	args := m.Called(ctx, medicationID)
	a, _ := args.Get(0).(*model.Administration)
	return a, args.Error(1)
}

func (m *AdministrationRepository) List(ctx context.Context, filter *model.AdministrationFilter) ([]*model.Administration, error) {
	args := m.Called(ctx, filter)
	a, _ := args.Get(0).([]*model.Administration)
	return a, args.Error(1)
}

type MedicalHistoryRepository struct{ mock.Mock }

func (m *MedicalHistoryRepository) Create(ctx context.Context, record *model.MedicalHistoryRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MedicalHistoryRecord, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.MedicalHistoryRecord)
	return r, args.Error(1)
}

func (m *MedicalHistoryRepository) Update(ctx context.Context, record *model.MedicalHistoryRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MedicalHistoryRepository) List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryRecord, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*model.MedicalHistoryRecord)
	return r, args.Error(1)
}

func (m *MedicalHistoryRepository) ActiveAllergies(ctx context.Context, residentID uuid.UUID) ([]*model.MedicalHistoryRecord, error) {
	args := m.Called(ctx, residentID)
	r, _ := args.Get(0).([]*model.MedicalHistoryRecord)
	return r, args.Error(1)
}

type CarePlanRepository struct{ mock.Mock }

func (m *CarePlanRepository) Create(ctx context.Context, plan *model.CarePlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *CarePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.CarePlan)
	return p, args.Error(1)
}

func (m *CarePlanRepository) Update(ctx context.Context, plan *model.CarePlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *CarePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CarePlanRepository) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*model.CarePlan, error) {
	args := m.Called(ctx, residentID)
	p, _ := args.Get(0).([]*model.CarePlan)
	return p, args.Error(1)
}

func (m *CarePlanRepository) ArchiveActive(ctx context.Context, residentID, exceptID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, residentID, exceptID)
	id, _ := args.Get(0).(*uuid.UUID)
	return id, args.Error(1)
}

type WellnessRepository struct{ mock.Mock }

func (m *WellnessRepository) Create(ctx context.Context, report *model.WellnessReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *WellnessRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WellnessReport, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.WellnessReport)
	return r, args.Error(1)
}

func (m *WellnessRepository) Update(ctx context.Context, report *model.WellnessReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *WellnessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *WellnessRepository) List(ctx context.Context, filter *model.WellnessFilter) ([]*model.WellnessReport, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*model.WellnessReport)
	return r, args.Error(1)
}

type FormRepository struct{ mock.Mock }

func (m *FormRepository) Create(ctx context.Context, form *model.FormTemplate) error {
	return m.Called(ctx, form).Error(0)
}

func (m *FormRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FormTemplate, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.FormTemplate)
	return f, args.Error(1)
}

func (m *FormRepository) Update(ctx context.Context, form *model.FormTemplate) error {
	return m.Called(ctx, form).Error(0)
}

func (m *FormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FormRepository) List(ctx context.Context, status string) ([]*model.FormTemplate, error) {
	args := m.Called(ctx, status)
	f, _ := args.Get(0).([]*model.FormTemplate)
	return f, args.Error(1)
}

func (m *FormRepository) CountReports(ctx context.Context, formID uuid.UUID) (int64, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).(int64), args.Error(1)
}

type IncidentReportRepository struct{ mock.Mock }

func (m *IncidentReportRepository) Create(ctx context.Context, report *model.IncidentReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *IncidentReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.IncidentReport, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.IncidentReport)
	return r, args.Error(1)
}

func (m *IncidentReportRepository) UpdateStatus(ctx context.Context, report *model.IncidentReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *IncidentReportRepository) List(ctx context.Context, filter *model.IncidentReportFilter) ([]*model.IncidentReport, int64, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*model.IncidentReport)
	return r, args.Get(1).(int64), args.Error(2)
}

type TaskRepository struct{ mock.Mock }

func (m *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Task)
	return t, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TaskRepository) List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, int64, error) {
	args := m.Called(ctx, filter)
	t, _ := args.Get(0).([]*model.Task)
	return t, args.Get(1).(int64), args.Error(2)
}

func (m *TaskRepository) ListOverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]*model.Task, error) {
	args := m.Called(ctx, now, limit)
	t, _ := args.Get(0).([]*model.Task)
	return t, args.Error(1)
}

func (m *TaskRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type ActivityRepository struct{ mock.Mock }

func (m *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return m.Called(ctx, activity).Error(0)
}

func (m *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Activity)
	return a, args.Error(1)
}

func (m *ActivityRepository) Update(ctx context.Context, activity *model.Activity) error {
	return m.Called(ctx, activity).Error(0)
}

func (m *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, filter *model.ActivityFilter) ([]*model.Activity, error) {
	args := m.Called(ctx, filter)
	a, _ := args.Get(0).([]*model.Activity)
	return a, args.Error(1)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) LockPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	e, _ := args.Get(0).([]*model.OutboxEvent)
	return e, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *OutboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, retryAt time.Time, errMsg string) error {
	return m.Called(ctx, id, retryCount, retryAt, errMsg).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errMsg string) error {
	return m.Called(ctx, id, retryCount, errMsg).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepository struct{ mock.Mock }

func (m *AuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	l, _ := args.Get(0).([]*model.AuditLog)
	return l, args.Get(1).(int64), args.Error(2)
}

func (m *AuditRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
