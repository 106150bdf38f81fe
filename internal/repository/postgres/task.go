package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const taskColumns = `id, title, description, priority, status, assigned_to, created_by, resident_id, group_id,
	due_at, completed_at, reassign_to, reassignment_status, reassignment_reason, reassign_requested_by,
	overdue_notified_at, created_at, updated_at`

type taskRepository struct {
	BaseRepository
}

func NewTaskRepository(base BaseRepository) repository.TaskRepository {
	return &taskRepository{base}
}

func (r *taskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (
			id, title, description, priority, status, assigned_to, created_by, resident_id,
			group_id, due_at, reassignment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	t.ID = uuid.New()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.exec(ctx, query,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.AssignedTo, t.CreatedBy, t.ResidentID,
		t.GroupID, t.DueAt, t.ReassignmentStatus, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	if err := r.get(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *taskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
		UPDATE tasks SET
			title = $1, description = $2, priority = $3, status = $4, assigned_to = $5,
			resident_id = $6, group_id = $7, due_at = $8, completed_at = $9, reassign_to = $10,
			reassignment_status = $11, reassignment_reason = $12, reassign_requested_by = $13,
			overdue_notified_at = $14, updated_at = $15
		WHERE id = $16
	`
	t.UpdatedAt = time.Now().UTC()
	err := r.execOne(ctx, query,
		t.Title, t.Description, t.Priority, t.Status, t.AssignedTo,
		t.ResidentID, t.GroupID, t.DueAt, t.CompletedAt, t.ReassignTo,
		t.ReassignmentStatus, t.ReassignmentReason, t.ReassignRequestedBy,
		t.OverdueNotifiedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, int64, error) {
	w := &where{}
	if filter.AssignedTo != nil {
		w.add("assigned_to = $%[1]d", *filter.AssignedTo)
	}
	if filter.Status != "" {
		w.add("status = $%[1]d", filter.Status)
	}
	if filter.Priority != "" {
		w.add("priority = $%[1]d", filter.Priority)
	}
	if filter.Overdue {
		w.add("status IN ('pending', 'in_progress') AND due_at < $%[1]d", time.Now().UTC())
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM tasks`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	tail, args := w.page(filter.PageSize, filter.Offset())
	query := `SELECT ` + taskColumns + ` FROM tasks` + w.String() +
		` ORDER BY due_at ASC NULLS LAST, created_at DESC` + tail

	var tasks []*model.Task
	if err := r.selectAll(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *taskRepository) ListOverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status IN ('pending', 'in_progress')
		AND due_at < $1
		AND overdue_notified_at IS NULL
		ORDER BY due_at
		LIMIT $2`

	var tasks []*model.Task
	if err := r.selectAll(ctx, &tasks, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE tasks SET overdue_notified_at = $1 WHERE id = $2 AND overdue_notified_at IS NULL`
	if err := r.execOne(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark task overdue: %w", err)
	}
	return nil
}
