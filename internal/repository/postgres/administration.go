package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

type administrationRepository struct {
	BaseRepository
}

func NewAdministrationRepository(base BaseRepository) repository.AdministrationRepository {
	return &administrationRepository{base}
}

func (r *administrationRepository) Create(ctx context.Context, a *model.Administration) error {
	query := `
		INSERT INTO medication_administrations (
			id, medication_id, resident_id, administered_by, administered_at,
			status, dose_given, notes, scan_verified, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	_, err := r.exec(ctx, query,
		a.ID, a.MedicationID, a.ResidentID, a.AdministeredBy, a.AdministeredAt,
		a.Status, a.DoseGiven, a.Notes, a.ScanVerified, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record administration: %w", err)
	}
	return nil
}

func (r *administrationRepository) LastGiven(ctx context.Context, medicationID uuid.UUID) (*model.Administration, error) {
	query := `
		SELECT id, medication_id, resident_id, administered_by, administered_at,
			status, dose_given, notes, scan_verified, created_at
		FROM medication_administrations
		WHERE medication_id = $1 AND status = 'given'
		ORDER BY administered_at DESC
		LIMIT 1
	`
	var a model.Administration
	if err := r.get(ctx, &a, query, medicationID); err != nil {
		return nil, fmt.Errorf("failed to get last administration: %w", err)
	}
	return &a, nil
}

func (r *administrationRepository) List(ctx context.Context, filter *model.AdministrationFilter) ([]*model.Administration, error) {
	w := &where{}
	w.add("a.resident_id = $%[1]d", filter.ResidentID)
	if filter.MedicationID != nil {
		w.add("a.medication_id = $%[1]d", *filter.MedicationID)
	}
	if filter.From != nil {
		w.add("a.administered_at >= $%[1]d", *filter.From)
	}
	if filter.To != nil {
		w.add("a.administered_at < $%[1]d", *filter.To)
	}

	query := `
		SELECT a.id, a.medication_id, a.resident_id, a.administered_by, a.administered_at,
			a.status, a.dose_given, a.notes, a.scan_verified, a.created_at,
			m.name AS medication_name, m.dosage AS medication_dosage,
			COALESCE(u.first_name || ' ' || u.last_name, '') AS administered_by_name
		FROM medication_administrations a
		JOIN medications m ON m.id = a.medication_id
		LEFT JOIN users u ON u.id = a.administered_by` + w.String() + `
		ORDER BY a.administered_at DESC`

	var out []*model.Administration
	if err := r.selectAll(ctx, &out, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list administrations: %w", err)
	}
	return out, nil
}
