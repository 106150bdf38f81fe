package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const wellnessColumns = `id, resident_id, reported_by, report_date, mood, appetite, sleep_quality, pain_level,
	systolic_bp, diastolic_bp, heart_rate, temperature_c, respiratory_rate, oxygen_saturation, notes,
	created_at, updated_at`

type wellnessRepository struct {
	BaseRepository
}

func NewWellnessRepository(base BaseRepository) repository.WellnessRepository {
	return &wellnessRepository{base}
}

func (r *wellnessRepository) Create(ctx context.Context, w *model.WellnessReport) error {
	query := `
		INSERT INTO wellness_reports (
			id, resident_id, reported_by, report_date, mood, appetite, sleep_quality, pain_level,
			systolic_bp, diastolic_bp, heart_rate, temperature_c, respiratory_rate, oxygen_saturation,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	w.ID = uuid.New()
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	_, err := r.exec(ctx, query,
		w.ID, w.ResidentID, w.ReportedBy, w.ReportDate, w.Mood, w.Appetite, w.SleepQuality, w.PainLevel,
		w.SystolicBP, w.DiastolicBP, w.HeartRate, w.TemperatureC, w.RespiratoryRate, w.OxygenSaturation,
		w.Notes, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wellness report: %w", err)
	}
	return nil
}

func (r *wellnessRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WellnessReport, error) {
	var w model.WellnessReport
	if err := r.get(ctx, &w, `SELECT `+wellnessColumns+` FROM wellness_reports WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get wellness report: %w", err)
	}
	return &w, nil
}

func (r *wellnessRepository) Update(ctx context.Context, w *model.WellnessReport) error {
	query := `
		UPDATE wellness_reports SET
			mood = $1, appetite = $2, sleep_quality = $3, pain_level = $4, systolic_bp = $5,
			diastolic_bp = $6, heart_rate = $7, temperature_c = $8, respiratory_rate = $9,
			oxygen_saturation = $10, notes = $11, updated_at = $12
		WHERE id = $13
	`
	w.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		w.Mood, w.Appetite, w.SleepQuality, w.PainLevel, w.SystolicBP,
		w.DiastolicBP, w.HeartRate, w.TemperatureC, w.RespiratoryRate,
		w.OxygenSaturation, w.Notes, w.UpdatedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wellness report: %w", err)
	}
	return nil
}

func (r *wellnessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM wellness_reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete wellness report: %w", err)
	}
	return nil
}

func (r *wellnessRepository) List(ctx context.Context, filter *model.WellnessFilter) ([]*model.WellnessReport, error) {
	w := &where{}
	w.add("resident_id = $%[1]d", filter.ResidentID)
	if filter.From != nil {
		w.add("report_date >= $%[1]d", *filter.From)
	}
	if filter.To != nil {
		w.add("report_date <= $%[1]d", *filter.To)
	}
	query := `SELECT ` + wellnessColumns + ` FROM wellness_reports` + w.String() + ` ORDER BY report_date DESC, created_at DESC`

	var reports []*model.WellnessReport
	if err := r.selectAll(ctx, &reports, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list wellness reports: %w", err)
	}
	return reports, nil
}
