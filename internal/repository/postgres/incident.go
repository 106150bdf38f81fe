package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const (
	formColumns   = `id, name, description, fields, status, created_by, created_at, updated_at`
	reportColumns = `id, form_id, resident_id, submitted_by, incident_date, data, status, review_notes,
	reviewed_by, reviewed_at, created_at, updated_at`
)

type formRepository struct {
	BaseRepository
}

func NewFormRepository(base BaseRepository) repository.FormRepository {
	return &formRepository{base}
}

func (r *formRepository) Create(ctx context.Context, f *model.FormTemplate) error {
	query := `
		INSERT INTO incident_forms (id, name, description, fields, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	f.ID = uuid.New()
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err := r.exec(ctx, query, f.ID, f.Name, f.Description, f.Fields, f.Status, f.CreatedBy, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident form: %w", err)
	}
	return nil
}

func (r *formRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FormTemplate, error) {
	var f model.FormTemplate
	if err := r.get(ctx, &f, `SELECT `+formColumns+` FROM incident_forms WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get incident form: %w", err)
	}
	return &f, nil
}

func (r *formRepository) Update(ctx context.Context, f *model.FormTemplate) error {
	query := `
		UPDATE incident_forms SET name = $1, description = $2, fields = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	f.UpdatedAt = time.Now().UTC()
	if err := r.execOne(ctx, query, f.Name, f.Description, f.Fields, f.Status, f.UpdatedAt, f.ID); err != nil {
		return fmt.Errorf("failed to update incident form: %w", err)
	}
	return nil
}

func (r *formRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM incident_forms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete incident form: %w", err)
	}
	return nil
}

func (r *formRepository) List(ctx context.Context, status string) ([]*model.FormTemplate, error) {
	w := &where{}
	if status != "" {
		w.add("status = $%[1]d", status)
	}
	var forms []*model.FormTemplate
	if err := r.selectAll(ctx, &forms, `SELECT `+formColumns+` FROM incident_forms`+w.String()+` ORDER BY name`, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list incident forms: %w", err)
	}
	return forms, nil
}

func (r *formRepository) CountReports(ctx context.Context, formID uuid.UUID) (int64, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM incident_reports WHERE form_id = $1`, formID)
	if err != nil {
		return 0, fmt.Errorf("failed to count incident reports: %w", err)
	}
	return n, nil
}

type incidentReportRepository struct {
	BaseRepository
}

func NewIncidentReportRepository(base BaseRepository) repository.IncidentReportRepository {
	return &incidentReportRepository{base}
}

func (r *incidentReportRepository) Create(ctx context.Context, rep *model.IncidentReport) error {
	query := `
		INSERT INTO incident_reports (
			id, form_id, resident_id, submitted_by, incident_date, data, status, review_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	rep.ID = uuid.New()
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now

	_, err := r.exec(ctx, query,
		rep.ID, rep.FormID, rep.ResidentID, rep.SubmittedBy, rep.IncidentDate, rep.Data,
		rep.Status, rep.ReviewNotes, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident report: %w", err)
	}
	return nil
}

func (r *incidentReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.IncidentReport, error) {
	var rep model.IncidentReport
	if err := r.get(ctx, &rep, `SELECT `+reportColumns+` FROM incident_reports WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get incident report: %w", err)
	}
	return &rep, nil
}

func (r *incidentReportRepository) UpdateStatus(ctx context.Context, rep *model.IncidentReport) error {
	query := `
		UPDATE incident_reports
		SET status = $1, review_notes = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $5
		WHERE id = $6
	`
	rep.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query, rep.Status, rep.ReviewNotes, rep.ReviewedBy, rep.ReviewedAt, rep.UpdatedAt, rep.ID)
	if err != nil {
		return fmt.Errorf("failed to update incident report: %w", err)
	}
	return nil
}

func (r *incidentReportRepository) List(ctx context.Context, filter *model.IncidentReportFilter) ([]*model.IncidentReport, int64, error) {
	w := &where{}
	if filter.FormID != nil {
		w.add("form_id = $%[1]d", *filter.FormID)
	}
	if filter.ResidentID != nil {
		w.add("resident_id = $%[1]d", *filter.ResidentID)
	}
	if filter.Status != "" {
		w.add("status = $%[1]d", filter.Status)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM incident_reports`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count incident reports: %w", err)
	}

	tail, args := w.page(filter.PageSize, filter.Offset())
	query := `SELECT ` + reportColumns + ` FROM incident_reports` + w.String() + ` ORDER BY incident_date DESC` + tail

	var reports []*model.IncidentReport
	if err := r.selectAll(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list incident reports: %w", err)
	}
	return reports, total, nil
}
