// Package incident manages incident form templates and the reports submitted against them.
package incident

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/internal/service/event"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	formRepo     repository.FormRepository
	reportRepo   repository.IncidentReportRepository
	residentRepo repository.ResidentRepository
	tx           repository.Transactor
	events       event.Emitter
}

func NewService(formRepo repository.FormRepository, reportRepo repository.IncidentReportRepository,
	residentRepo repository.ResidentRepository, tx repository.Transactor, events event.Emitter) *Service {
	return &Service{
		formRepo:     formRepo,
		reportRepo:   reportRepo,
		residentRepo: residentRepo,
		tx:           tx,
		events:       events,
	}
}

func (s *Service) CreateForm(ctx context.Context, actorID uuid.UUID, req *model.CreateFormRequest) (*model.FormTemplate, error) {
	if details := validateFields(req.Fields); len(details) > 0 {
		return nil, apperrors.Validation("invalid form fields", details...)
	}
	form := &model.FormTemplate{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Fields:      req.Fields,
		Status:      model.FormStatusActive,
		CreatedBy:   actorID,
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, service.RepoError("form", err)
	}
	return form, nil
}

func (s *Service) GetForm(ctx context.Context, id uuid.UUID) (*model.FormTemplate, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("form", err)
	}
	return form, nil
}

func (s *Service) ListForms(ctx context.Context, status string) ([]*model.FormTemplate, error) {
	forms, err := s.formRepo.List(ctx, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return forms, nil
}

func (s *Service) UpdateForm(ctx context.Context, id uuid.UUID, req *model.UpdateFormRequest) (*model.FormTemplate, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		form.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		form.Description = *req.Description
	}
	if req.Fields != nil {
		if details := validateFields(req.Fields); len(details) > 0 {
			return nil, apperrors.Validation("invalid form fields", details...)
		}
		form.Fields = req.Fields
	}
	if req.Status != nil {
		form.Status = *req.Status
	}

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, service.RepoError("form", err)
	}
	return form, nil
}

// DeleteForm archives a form that already has reports and removes it otherwise.
// It reports whether the form was archived.
func (s *Service) DeleteForm(ctx context.Context, id uuid.UUID) (bool, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return false, err
	}
	n, err := s.formRepo.CountReports(ctx, id)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	if n == 0 {
		return false, service.RepoError("form", s.formRepo.Delete(ctx, id))
	}

	form.Status = model.FormStatusArchived
	if err := s.formRepo.Update(ctx, form); err != nil {
		return false, service.RepoError("form", err)
	}
	log.Info().Str("form_id", id.String()).Int64("reports", n).Msg("Archived incident form with existing reports")
	return true, nil
}

func (s *Service) SubmitReport(ctx context.Context, actorID, formID uuid.UUID, req *model.SubmitReportRequest) (*model.IncidentReport, error) {
	form, err := s.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.Status == model.FormStatusArchived {
		return nil, apperrors.Validation("this form is archived and no longer accepts reports")
	}
	if req.ResidentID != nil {
		if _, err := s.residentRepo.GetByID(ctx, *req.ResidentID); err != nil {
			return nil, service.RepoError("resident", err)
		}
	}
	if req.IncidentDate.After(time.Now().Add(time.Minute)) {
		return nil, apperrors.Validation("invalid incident report", "incident_date cannot be in the future")
	}
	if details := validateData(form.Fields, req.Data); len(details) > 0 {
		return nil, apperrors.Validation("invalid incident report", details...)
	}

	report := &model.IncidentReport{
		FormID:       form.ID,
		ResidentID:   req.ResidentID,
		SubmittedBy:  actorID,
		IncidentDate: req.IncidentDate.UTC(),
		Data:         req.Data,
		Status:       model.ReportStatusSubmitted,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reportRepo.Create(ctx, report); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventIncidentReported, model.IncidentReportedPayload{
			ReportID:     report.ID,
			FormID:       form.ID,
			FormName:     form.Name,
			ResidentID:   report.ResidentID,
			SubmittedBy:  actorID,
			IncidentDate: report.IncidentDate,
		})
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*model.IncidentReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("incident report", err)
	}
	return report, nil
}

func (s *Service) ListReports(ctx context.Context, filter *model.IncidentReportFilter) ([]*model.IncidentReport, int64, error) {
	filter.Normalize()
	reports, total, err := s.reportRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return reports, total, nil
}

func (s *Service) UpdateReportStatus(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateReportStatusRequest) (*model.IncidentReport, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionReport(report.Status, req.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("cannot move report from %s to %s", report.Status, req.Status))
	}

	now := time.Now().UTC()
	report.Status = req.Status
	report.ReviewedBy = &actorID
	report.ReviewedAt = &now
	if notes := strings.TrimSpace(req.ReviewNotes); notes != "" {
		report.ReviewNotes = notes
	}

	if err := s.reportRepo.UpdateStatus(ctx, report); err != nil {
		return nil, service.RepoError("incident report", err)
	}
	return report, nil
}
