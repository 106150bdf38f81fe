package medicalhistory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo         repository.MedicalHistoryRepository
	residentRepo repository.ResidentRepository
}

func NewService(repo repository.MedicalHistoryRepository, residentRepo repository.ResidentRepository) *Service {
	return &Service{repo: repo, residentRepo: residentRepo}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateMedicalHistoryRequest) (*model.MedicalHistoryRecord, error) {
	if _, err := s.residentRepo.GetByID(ctx, req.ResidentID); err != nil {
		return nil, service.RepoError("resident", err)
	}

	record := &model.MedicalHistoryRecord{
		ResidentID:  req.ResidentID,
		Type:        req.Type,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Severity:    req.Severity,
		Reaction:    req.Reaction,
		OccurredOn:  req.OccurredOn,
		Status:      req.Status,
		Provider:    req.Provider,
		Notes:       req.Notes,
		CreatedBy:   actorID,
	}
	if record.Status == "" {
		record.Status = model.HistoryStatusActive
	}
	if err := validate(record); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, apperrors.Internal(err)
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.MedicalHistoryRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("medical history record", err)
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistoryRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		record.Type = *req.Type
	}
	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Severity != nil {
		record.Severity = req.Severity
	}
	if req.Reaction != nil {
		record.Reaction = *req.Reaction
	}
	if req.OccurredOn != nil {
		record.OccurredOn = req.OccurredOn
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	if req.Provider != nil {
		record.Provider = *req.Provider
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if err := validate(record); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, service.RepoError("medical history record", err)
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("medical history record", s.repo.Delete(ctx, id))
}

// Summary returns every record of the resident grouped by history type.
// All types are present in the result, empty when the resident has none.
func (s *Service) Summary(ctx context.Context, residentID uuid.UUID) (*model.MedicalHistorySummary, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}
	records, err := s.repo.List(ctx, &model.MedicalHistoryFilter{ResidentID: &residentID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	summary := &model.MedicalHistorySummary{
		ResidentID: residentID,
		Records:    make(map[string][]*model.MedicalHistoryRecord, len(model.HistoryTypes)),
		Total:      len(records),
	}
	for _, t := range model.HistoryTypes {
		summary.Records[t] = []*model.MedicalHistoryRecord{}
	}
	for _, r := range records {
		summary.Records[r.Type] = append(summary.Records[r.Type], r)
	}
	return summary, nil
}

func validate(r *model.MedicalHistoryRecord) error {
	if r.Type == model.HistoryTypeAllergy && (r.Severity == nil || *r.Severity == "") {
		return apperrors.Validation("invalid medical history record", "severity is required for allergies")
	}
	if r.OccurredOn != nil && r.OccurredOn.After(model.Today()) {
		return apperrors.Validation("invalid medical history record", "occurred_on cannot be in the future")
	}
	return nil
}
