package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const residentColumns = `id, first_name, last_name, date_of_birth, gender, room_number, admission_date,
	status, barcode, emergency_contact_name, emergency_contact_phone, group_id, notes, created_at, updated_at`

type residentRepository struct {
	BaseRepository
}

func NewResidentRepository(base BaseRepository) repository.ResidentRepository {
	return &residentRepository{base}
}

func (r *residentRepository) Create(ctx context.Context, res *model.Resident) error {
	query := `
		INSERT INTO residents (
			id, first_name, last_name, date_of_birth, gender, room_number, admission_date,
			status, barcode, emergency_contact_name, emergency_contact_phone, group_id, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	res.ID = uuid.New()
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	_, err := r.exec(ctx, query,
		res.ID, res.FirstName, res.LastName, res.DateOfBirth, res.Gender, res.RoomNumber,
		res.AdmissionDate, res.Status, res.Barcode, res.EmergencyContactName,
		res.EmergencyContactPhone, res.GroupID, res.Notes, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resident: %w", err)
	}
	return nil
}

func (r *residentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Resident, error) {
	var res model.Resident
	if err := r.get(ctx, &res, `SELECT `+residentColumns+` FROM residents WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return &res, nil
}

func (r *residentRepository) GetByBarcode(ctx context.Context, barcode string) (*model.Resident, error) {
	var res model.Resident
	query := `SELECT ` + residentColumns + ` FROM residents WHERE UPPER(barcode) = UPPER($1)`
	if err := r.get(ctx, &res, query, barcode); err != nil {
		return nil, fmt.Errorf("failed to get resident by barcode: %w", err)
	}
	return &res, nil
}

func (r *residentRepository) Update(ctx context.Context, res *model.Resident) error {
	query := `
		UPDATE residents SET
			first_name = $1, last_name = $2, date_of_birth = $3, gender = $4, room_number = $5,
			admission_date = $6, status = $7, emergency_contact_name = $8,
			emergency_contact_phone = $9, group_id = $10, notes = $11, updated_at = $12
		WHERE id = $13
	`
	res.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		res.FirstName, res.LastName, res.DateOfBirth, res.Gender, res.RoomNumber,
		res.AdmissionDate, res.Status, res.EmergencyContactName, res.EmergencyContactPhone,
		res.GroupID, res.Notes, res.UpdatedAt, res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}
	return nil
}

func (r *residentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM residents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}
	return nil
}

func (r *residentRepository) List(ctx context.Context, filter *model.ResidentFilter) ([]*model.Resident, int64, error) {
	w := &where{}
	if filter.Status != "" {
		w.add("status = $%[1]d", filter.Status)
	}
	if filter.GroupID != nil {
		w.add("group_id = $%[1]d", *filter.GroupID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		w.add("(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR room_number ILIKE $%[1]d)", "%"+s+"%")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM residents`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count residents: %w", err)
	}

	tail, args := w.page(filter.PageSize, filter.Offset())
	query := `SELECT ` + residentColumns + ` FROM residents` + w.String() + ` ORDER BY last_name, first_name` + tail

	var residents []*model.Resident
	if err := r.selectAll(ctx, &residents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, total, nil
}

func (r *residentRepository) ListAll(ctx context.Context, status string) ([]*model.Resident, error) {
	w := &where{}
	if status != "" {
		w.add("status = $%[1]d", status)
	}
	query := `SELECT ` + residentColumns + ` FROM residents` + w.String() + ` ORDER BY room_number, last_name`

	var residents []*model.Resident
	if err := r.selectAll(ctx, &residents, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}
