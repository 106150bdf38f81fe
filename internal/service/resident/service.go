package resident

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/internal/service/event"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type ResidentService interface {
	CreateResident(ctx context.Context, req *model.CreateResidentRequest) (*model.Resident, error)
	GetResident(ctx context.Context, id uuid.UUID) (*model.Resident, error)
	UpdateResident(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateResidentRequest) (*model.Resident, error)
	DeleteResident(ctx context.Context, id uuid.UUID) error
	ListResidents(ctx context.Context, filter *model.ResidentFilter) ([]*model.Resident, int64, error)
	Roster(ctx context.Context, status string) ([]*model.Resident, error)
}

type Service struct {
	repo      repository.ResidentRepository
	groupRepo repository.GroupRepository
	tx        repository.Transactor
	events    event.Emitter
}

func NewService(repo repository.ResidentRepository, groupRepo repository.GroupRepository,
	tx repository.Transactor, events event.Emitter) *Service {
	return &Service{
		repo:      repo,
		groupRepo: groupRepo,
		tx:        tx,
		events:    events,
	}
}

func (s *Service) CreateResident(ctx context.Context, req *model.CreateResidentRequest) (*model.Resident, error) {
	resident := &model.Resident{
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		RoomNumber:            strings.TrimSpace(req.RoomNumber),
		AdmissionDate:         req.AdmissionDate,
		Status:                req.Status,
		Barcode:               strings.ToUpper(strings.TrimSpace(req.Barcode)),
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		GroupID:               req.GroupID,
		Notes:                 req.Notes,
	}
	if resident.Status == "" {
		resident.Status = model.ResidentStatusActive
	}
	if resident.AdmissionDate.IsZero() {
		resident.AdmissionDate = model.Today()
	}
	if err := validateDates(resident); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, resident.GroupID); err != nil {
		return nil, err
	}

	generated := resident.Barcode == ""
	for attempt := 0; ; attempt++ {
		if generated {
			code, err := service.NewBarcode(model.ResidentBarcodePrefix)
			if err != nil {
				return nil, apperrors.Internal(err)
			}
			resident.Barcode = code
		}
		err := s.repo.Create(ctx, resident)
		if err == nil {
			return resident, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Internal(err)
		}
		if !generated || attempt+1 >= service.BarcodeAttempts {
			return nil, apperrors.Conflict("barcode already in use", err)
		}
	}
}

func (s *Service) GetResident(ctx context.Context, id uuid.UUID) (*model.Resident, error) {
	resident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("resident", err)
	}
	return resident, nil
}

// UpdateResident applies req and records a status change event when the status moves.
func (s *Service) UpdateResident(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateResidentRequest) (*model.Resident, error) {
	resident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("resident", err)
	}
	previousStatus := resident.Status

	if req.FirstName != nil {
		resident.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		resident.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.DateOfBirth != nil {
		resident.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		resident.Gender = *req.Gender
	}
	if req.RoomNumber != nil {
		resident.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.AdmissionDate != nil {
		resident.AdmissionDate = *req.AdmissionDate
	}
	if req.Status != nil {
		resident.Status = *req.Status
	}
	if req.EmergencyContactName != nil {
		resident.EmergencyContactName = *req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		resident.EmergencyContactPhone = *req.EmergencyContactPhone
	}
	if req.GroupID != nil {
		resident.GroupID = req.GroupID
		if err := s.checkGroup(ctx, req.GroupID); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		resident.Notes = *req.Notes
	}
	if err := validateDates(resident); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, resident); err != nil {
			return err
		}
		if resident.Status == previousStatus {
			return nil
		}
		return s.events.Emit(ctx, model.EventResidentStatusChanged, model.ResidentStatusPayload{
			ResidentID: resident.ID,
			From:       previousStatus,
			To:         resident.Status,
			ActorID:    actorID,
		})
	})
	if err != nil {
		return nil, service.RepoError("resident", err)
	}
	return resident, nil
}

func (s *Service) DeleteResident(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("resident", s.repo.Delete(ctx, id))
}

func (s *Service) ListResidents(ctx context.Context, filter *model.ResidentFilter) ([]*model.Resident, int64, error) {
	filter.Normalize()
	residents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return residents, total, nil
}

// Roster returns every resident, optionally restricted to one status, ordered by room.
func (s *Service) Roster(ctx context.Context, status string) ([]*model.Resident, error) {
	residents, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return residents, nil
}

func (s *Service) checkGroup(ctx context.Context, groupID *uuid.UUID) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		return service.RepoError("group", err)
	}
	return nil
}

func validateDates(r *model.Resident) error {
	var details []string
	if r.DateOfBirth.IsZero() {
		details = append(details, "date_of_birth is required")
	} else if !r.DateOfBirth.Before(model.Today()) {
		details = append(details, "date_of_birth must be in the past")
	}
	if !r.DateOfBirth.IsZero() && r.AdmissionDate.Before(r.DateOfBirth) {
		details = append(details, "admission_date cannot be before date_of_birth")
	}
	if len(details) > 0 {
		return apperrors.Validation("invalid resident dates", details...)
	}
	return nil
}
