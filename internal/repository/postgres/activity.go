package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const activityColumns = `id, title, description, location, category, start_time, end_time, all_day,
	group_id, resident_ids, created_by, created_at, updated_at`

type activityRepository struct {
	BaseRepository
}

func NewActivityRepository(base BaseRepository) repository.ActivityRepository {
	return &activityRepository{base}
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	query := `
		INSERT INTO activities (
			id, title, description, location, category, start_time, end_time, all_day,
			group_id, resident_ids, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.ResidentIDs == nil {
		a.ResidentIDs = []string{}
	}

	_, err := r.exec(ctx, query,
		a.ID, a.Title, a.Description, a.Location, a.Category, a.StartTime, a.EndTime, a.AllDay,
		a.GroupID, a.ResidentIDs, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var a model.Activity
	if err := r.get(ctx, &a, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

func (r *activityRepository) Update(ctx context.Context, a *model.Activity) error {
	query := `
		UPDATE activities SET
			title = $1, description = $2, location = $3, category = $4, start_time = $5,
			end_time = $6, all_day = $7, group_id = $8, resident_ids = $9, updated_at = $10
		WHERE id = $11
	`
	a.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		a.Title, a.Description, a.Location, a.Category, a.StartTime,
		a.EndTime, a.AllDay, a.GroupID, a.ResidentIDs, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

func (r *activityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM activities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

// List returns activities overlapping [From, To).
func (r *activityRepository) List(ctx context.Context, filter *model.ActivityFilter) ([]*model.Activity, error) {
	w := &where{}
	w.add("start_time < $%[1]d", filter.To)
	w.add("end_time > $%[1]d", filter.From)
	if filter.GroupID != nil {
		w.add("group_id = $%[1]d", *filter.GroupID)
	}
	query := `SELECT ` + activityColumns + ` FROM activities` + w.String() + ` ORDER BY start_time`

	var out []*model.Activity
	if err := r.selectAll(ctx, &out, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return out, nil
}
