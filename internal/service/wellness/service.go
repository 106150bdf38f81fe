package wellness

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo         repository.WellnessRepository
	residentRepo repository.ResidentRepository
}

func NewService(repo repository.WellnessRepository, residentRepo repository.ResidentRepository) *Service {
	return &Service{repo: repo, residentRepo: residentRepo}
}

func (s *Service) Create(ctx context.Context, actorID, residentID uuid.UUID, req *model.CreateWellnessReportRequest) (*model.WellnessReport, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}

	report := &model.WellnessReport{
		ResidentID:   residentID,
		ReportedBy:   actorID,
		ReportDate:   req.ReportDate,
		Mood:         req.Mood,
		Appetite:     req.Appetite,
		SleepQuality: req.SleepQuality,
		PainLevel:    req.PainLevel,
		Notes:        req.Notes,
	}
	if report.ReportDate.IsZero() {
		report.ReportDate = model.Today()
	}
	applyVitals(report, req.Vitals)
	if err := validate(report); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, apperrors.Internal(err)
	}
	return report, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.WellnessReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("wellness report", err)
	}
	return report, nil
}

func (s *Service) List(ctx context.Context, residentID uuid.UUID, from, to *time.Time) ([]*model.WellnessReport, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.BadRequest("to must not be before from", nil)
	}
	reports, err := s.repo.List(ctx, &model.WellnessFilter{ResidentID: residentID, From: from, To: to})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return reports, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateWellnessReportRequest) (*model.WellnessReport, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Mood != nil {
		report.Mood = *req.Mood
	}
	if req.Appetite != nil {
		report.Appetite = *req.Appetite
	}
	if req.SleepQuality != nil {
		report.SleepQuality = *req.SleepQuality
	}
	if req.PainLevel != nil {
		report.PainLevel = *req.PainLevel
	}
	if req.Notes != nil {
		report.Notes = *req.Notes
	}
	applyVitals(report, req.Vitals)
	if err := validate(report); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, service.RepoError("wellness report", err)
	}
	return report, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("wellness report", s.repo.Delete(ctx, id))
}

// applyVitals copies the vitals present in v onto the report.
func applyVitals(r *model.WellnessReport, v model.Vitals) {
	if v.SystolicBP != nil {
		r.SystolicBP = v.SystolicBP
	}
	if v.DiastolicBP != nil {
		r.DiastolicBP = v.DiastolicBP
	}
	if v.HeartRate != nil {
		r.HeartRate = v.HeartRate
	}
	if v.TemperatureC != nil {
		r.TemperatureC = v.TemperatureC
	}
	if v.RespiratoryRate != nil {
		r.RespiratoryRate = v.RespiratoryRate
	}
	if v.OxygenSaturation != nil {
		r.OxygenSaturation = v.OxygenSaturation
	}
}

func validate(r *model.WellnessReport) error {
	var details []string
	if r.ReportDate.After(model.Today()) {
		details = append(details, "report_date cannot be in the future")
	}
	if (r.SystolicBP == nil) != (r.DiastolicBP == nil) {
		details = append(details, "systolic_bp and diastolic_bp must be recorded together")
	}
	if r.SystolicBP != nil && r.DiastolicBP != nil && *r.DiastolicBP >= *r.SystolicBP {
		details = append(details, "diastolic_bp must be lower than systolic_bp")
	}
	if len(details) > 0 {
		return apperrors.Validation("invalid wellness report", details...)
	}
	return nil
}
