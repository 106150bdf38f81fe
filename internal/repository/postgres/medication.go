package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const medicationColumns = `id, resident_id, name, dosage, route, frequency, start_date, end_date,
	instructions, prescribed_by, barcode, status, created_at, updated_at`

type medicationRepository struct {
	BaseRepository
}

func NewMedicationRepository(base BaseRepository) repository.MedicationRepository {
	return &medicationRepository{base}
}

func (r *medicationRepository) Create(ctx context.Context, m *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, resident_id, name, dosage, route, frequency, start_date, end_date,
			instructions, prescribed_by, barcode, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	m.ID = uuid.New()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.exec(ctx, query,
		m.ID, m.ResidentID, m.Name, m.Dosage, m.Route, m.Frequency, m.StartDate, m.EndDate,
		m.Instructions, m.PrescribedBy, m.Barcode, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	var m model.Medication
	if err := r.get(ctx, &m, `SELECT `+medicationColumns+` FROM medications WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &m, nil
}

func (r *medicationRepository) GetByBarcode(ctx context.Context, barcode string) (*model.Medication, error) {
	var m model.Medication
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE UPPER(barcode) = UPPER($1)`
	if err := r.get(ctx, &m, query, barcode); err != nil {
		return nil, fmt.Errorf("failed to get medication by barcode: %w", err)
	}
	return &m, nil
}

func (r *medicationRepository) Update(ctx context.Context, m *model.Medication) error {
	query := `
		UPDATE medications SET
			name = $1, dosage = $2, route = $3, frequency = $4, start_date = $5, end_date = $6,
			instructions = $7, prescribed_by = $8, status = $9, updated_at = $10
		WHERE id = $11
	`
	m.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		m.Name, m.Dosage, m.Route, m.Frequency, m.StartDate, m.EndDate,
		m.Instructions, m.PrescribedBy, m.Status, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM medications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) ListByResident(ctx context.Context, residentID uuid.UUID, status string) ([]*model.Medication, error) {
	w := &where{}
	w.add("resident_id = $%[1]d", residentID)
	if status != "" {
		w.add("status = $%[1]d", status)
	}
	query := `SELECT ` + medicationColumns + ` FROM medications` + w.String() + ` ORDER BY name`

	var meds []*model.Medication
	if err := r.selectAll(ctx, &meds, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}
