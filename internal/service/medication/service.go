package medication

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

// maxRecordWindow bounds administration record queries.
const maxRecordWindow = 93 * 24 * time.Hour

type Service struct {
	repo         repository.MedicationRepository
	residentRepo repository.ResidentRepository
	adminRepo    repository.AdministrationRepository
}

func NewService(repo repository.MedicationRepository, residentRepo repository.ResidentRepository,
	adminRepo repository.AdministrationRepository) *Service {
	return &Service{
		repo:         repo,
		residentRepo: residentRepo,
		adminRepo:    adminRepo,
	}
}

func (s *Service) Create(ctx context.Context, residentID uuid.UUID, req *model.CreateMedicationRequest) (*model.Medication, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}

	med := &model.Medication{
		ResidentID:   residentID,
		Name:         strings.TrimSpace(req.Name),
		Dosage:       strings.TrimSpace(req.Dosage),
		Route:        req.Route,
		Frequency:    req.Frequency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Instructions: req.Instructions,
		PrescribedBy: strings.TrimSpace(req.PrescribedBy),
		Barcode:      strings.ToUpper(strings.TrimSpace(req.Barcode)),
		Status:       req.Status,
	}
	if med.Status == "" {
		med.Status = model.MedicationStatusActive
	}
	if med.StartDate.IsZero() {
		med.StartDate = model.Today()
	}
	if err := validateWindow(med); err != nil {
		return nil, err
	}

	generated := med.Barcode == ""
	for attempt := 0; ; attempt++ {
		if generated {
			code, err := service.NewBarcode(model.MedicationBarcodePrefix)
			if err != nil {
				return nil, apperrors.Internal(err)
			}
			med.Barcode = code
		}
		err := s.repo.Create(ctx, med)
		if err == nil {
			return med, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Internal(err)
		}
		if !generated || attempt+1 >= service.BarcodeAttempts {
			return nil, apperrors.Conflict("barcode already in use", err)
		}
	}
}

// Get returns the medication when it belongs to residentID.
func (s *Service) Get(ctx context.Context, residentID, id uuid.UUID) (*model.Medication, error) {
	med, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("medication", err)
	}
	if med.ResidentID != residentID {
		return nil, apperrors.NotFound("medication", nil)
	}
	return med, nil
}

func (s *Service) List(ctx context.Context, residentID uuid.UUID, status string) ([]*model.Medication, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}
	meds, err := s.repo.ListByResident(ctx, residentID, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return meds, nil
}

func (s *Service) Update(ctx context.Context, residentID, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	med, err := s.Get(ctx, residentID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		med.Name = strings.TrimSpace(*req.Name)
	}
	if req.Dosage != nil {
		med.Dosage = strings.TrimSpace(*req.Dosage)
	}
	if req.Route != nil {
		med.Route = *req.Route
	}
	if req.Frequency != nil {
		med.Frequency = *req.Frequency
	}
	if req.StartDate != nil {
		med.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		if req.EndDate.IsZero() {
			med.EndDate = nil
		} else {
			med.EndDate = req.EndDate
		}
	}
	if req.Instructions != nil {
		med.Instructions = *req.Instructions
	}
	if req.PrescribedBy != nil {
		med.PrescribedBy = strings.TrimSpace(*req.PrescribedBy)
	}
	if req.Status != nil {
		med.Status = *req.Status
	}
	if err := validateWindow(med); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, med); err != nil {
		return nil, service.RepoError("medication", err)
	}
	return med, nil
}

func (s *Service) Delete(ctx context.Context, residentID, id uuid.UUID) error {
	if _, err := s.Get(ctx, residentID, id); err != nil {
		return err
	}
	return service.RepoError("medication", s.repo.Delete(ctx, id))
}

// Administrations returns the resident's administration record between from and to.
// Defaults to the last 7 days.
func (s *Service) Administrations(ctx context.Context, residentID uuid.UUID, from, to *time.Time) ([]*model.Administration, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}

	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.AddDate(0, 0, -7)
		from = &start
	}
	if !to.After(*from) {
		return nil, apperrors.BadRequest("to must be after from", nil)
	}
	if to.Sub(*from) > maxRecordWindow {
		return nil, apperrors.BadRequest("administration record window cannot exceed 93 days", nil)
	}

	records, err := s.adminRepo.List(ctx, &model.AdministrationFilter{ResidentID: residentID, From: from, To: to})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

func validateWindow(m *model.Medication) error {
	if m.EndDate != nil && m.EndDate.Before(m.StartDate) {
		return apperrors.Validation("invalid medication dates", "end_date cannot be before start_date")
	}
	return nil
}
