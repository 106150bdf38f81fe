package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const carePlanColumns = `id, resident_id, title, medical_needs, dietary_needs, assistance_needs, goals,
	start_date, review_date, status, created_by, created_at, updated_at`

type carePlanRepository struct {
	BaseRepository
}

func NewCarePlanRepository(base BaseRepository) repository.CarePlanRepository {
	return &carePlanRepository{base}
}

func (r *carePlanRepository) Create(ctx context.Context, p *model.CarePlan) error {
	query := `
		INSERT INTO care_plans (
			id, resident_id, title, medical_needs, dietary_needs, assistance_needs, goals,
			start_date, review_date, status, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.exec(ctx, query,
		p.ID, p.ResidentID, p.Title, p.MedicalNeeds, p.DietaryNeeds, p.AssistanceNeeds, p.Goals,
		p.StartDate, p.ReviewDate, p.Status, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create care plan: %w", err)
	}
	return nil
}

func (r *carePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	var p model.CarePlan
	if err := r.get(ctx, &p, `SELECT `+carePlanColumns+` FROM care_plans WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get care plan: %w", err)
	}
	return &p, nil
}

func (r *carePlanRepository) Update(ctx context.Context, p *model.CarePlan) error {
	query := `
		UPDATE care_plans SET
			title = $1, medical_needs = $2, dietary_needs = $3, assistance_needs = $4, goals = $5,
			start_date = $6, review_date = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	p.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		p.Title, p.MedicalNeeds, p.DietaryNeeds, p.AssistanceNeeds, p.Goals,
		p.StartDate, p.ReviewDate, p.Status, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update care plan: %w", err)
	}
	return nil
}

func (r *carePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM care_plans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete care plan: %w", err)
	}
	return nil
}

func (r *carePlanRepository) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*model.CarePlan, error) {
	query := `SELECT ` + carePlanColumns + ` FROM care_plans WHERE resident_id = $1 ORDER BY start_date DESC, created_at DESC`

	var plans []*model.CarePlan
	if err := r.selectAll(ctx, &plans, query, residentID); err != nil {
		return nil, fmt.Errorf("failed to list care plans: %w", err)
	}
	return plans, nil
}

func (r *carePlanRepository) ArchiveActive(ctx context.Context, residentID, exceptID uuid.UUID) (*uuid.UUID, error) {
	query := `
		UPDATE care_plans SET status = 'archived', updated_at = $1
		WHERE resident_id = $2 AND status = 'active' AND id <> $3
		RETURNING id
	`
	var id uuid.UUID
	err := r.get(ctx, &id, query, time.Now().UTC(), residentID, exceptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive active care plan: %w", err)
	}
	return &id, nil
}
