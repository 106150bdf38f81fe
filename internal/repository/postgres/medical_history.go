package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const historyColumns = `id, resident_id, type, name, description, severity, reaction, occurred_on,
	status, provider, notes, created_by, created_at, updated_at`

type medicalHistoryRepository struct {
	BaseRepository
}

func NewMedicalHistoryRepository(base BaseRepository) repository.MedicalHistoryRepository {
	return &medicalHistoryRepository{base}
}

func (r *medicalHistoryRepository) Create(ctx context.Context, rec *model.MedicalHistoryRecord) error {
	query := `
		INSERT INTO medical_history (
			id, resident_id, type, name, description, severity, reaction, occurred_on,
			status, provider, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	rec.ID = uuid.New()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := r.exec(ctx, query,
		rec.ID, rec.ResidentID, rec.Type, rec.Name, rec.Description, rec.Severity, rec.Reaction,
		rec.OccurredOn, rec.Status, rec.Provider, rec.Notes, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical history record: %w", err)
	}
	return nil
}

func (r *medicalHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MedicalHistoryRecord, error) {
	var rec model.MedicalHistoryRecord
	if err := r.get(ctx, &rec, `SELECT `+historyColumns+` FROM medical_history WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get medical history record: %w", err)
	}
	return &rec, nil
}

func (r *medicalHistoryRepository) Update(ctx context.Context, rec *model.MedicalHistoryRecord) error {
	query := `
		UPDATE medical_history SET
			type = $1, name = $2, description = $3, severity = $4, reaction = $5,
			occurred_on = $6, status = $7, provider = $8, notes = $9, updated_at = $10
		WHERE id = $11
	`
	rec.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		rec.Type, rec.Name, rec.Description, rec.Severity, rec.Reaction,
		rec.OccurredOn, rec.Status, rec.Provider, rec.Notes, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical history record: %w", err)
	}
	return nil
}

func (r *medicalHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM medical_history WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete medical history record: %w", err)
	}
	return nil
}

func (r *medicalHistoryRepository) List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryRecord, error) {
	w := &where{}
	if filter.ResidentID != nil {
		w.add("resident_id = $%[1]d", *filter.ResidentID)
	}
	if filter.Type != "" {
		w.add("type = $%[1]d", filter.Type)
	}
	if filter.Status != "" {
		w.add("status = $%[1]d", filter.Status)
	}
	query := `SELECT ` + historyColumns + ` FROM medical_history` + w.String() +
		` ORDER BY type, occurred_on DESC NULLS LAST, created_at DESC`

	var recs []*model.MedicalHistoryRecord
	if err := r.selectAll(ctx, &recs, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list medical history: %w", err)
	}
	return recs, nil
}

func (r *medicalHistoryRepository) ActiveAllergies(ctx context.Context, residentID uuid.UUID) ([]*model.MedicalHistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM medical_history
		WHERE resident_id = $1 AND type = 'allergy' AND status = 'active'`

	var recs []*model.MedicalHistoryRecord
	if err := r.selectAll(ctx, &recs, query, residentID); err != nil {
		return nil, fmt.Errorf("failed to list allergies: %w", err)
	}
	return recs, nil
}
