package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

const (
	ReassignmentNone     = "none"
	ReassignmentPending  = "pending"
	ReassignmentAccepted = "accepted"
	ReassignmentRejected = "rejected"
)

var taskTransitions = map[string][]string{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusPending, TaskStatusCompleted, TaskStatusCancelled},
}

// CanTransitionTask reports whether a task may move from one status to another.
func CanTransitionTask(from, to string) bool {
	for _, s := range taskTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Task struct {
	Base
	Title               string     `json:"title" db:"title"`
	Description         string     `json:"description" db:"description"`
	Priority            string     `json:"priority" db:"priority"`
	Status              string     `json:"status" db:"status"`
	AssignedTo          uuid.UUID  `json:"assigned_to" db:"assigned_to"`
	CreatedBy           uuid.UUID  `json:"created_by" db:"created_by"`
	ResidentID          *uuid.UUID `json:"resident_id,omitempty" db:"resident_id"`
	GroupID             *uuid.UUID `json:"group_id,omitempty" db:"group_id"`
	DueAt               *time.Time `json:"due_at,omitempty" db:"due_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ReassignTo          *uuid.UUID `json:"reassign_to,omitempty" db:"reassign_to"`
	ReassignmentStatus  string     `json:"reassignment_status" db:"reassignment_status"`
	ReassignmentReason  string     `json:"reassignment_reason" db:"reassignment_reason"`
	ReassignRequestedBy *uuid.UUID `json:"reassign_requested_by,omitempty" db:"reassign_requested_by"`
	OverdueNotifiedAt   *time.Time `json:"-" db:"overdue_notified_at"`
}

func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsTerminal() && t.DueAt != nil && t.DueAt.Before(now)
}

type TaskFilter struct {
	AssignedTo *uuid.UUID
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	Overdue    bool   `form:"overdue"`
	Pagination
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,notblank,min=2,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  uuid.UUID  `json:"assigned_to" binding:"required"`
	ResidentID  *uuid.UUID `json:"resident_id"`
	GroupID     *uuid.UUID `json:"group_id"`
	DueAt       *time.Time `json:"due_at"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,notblank,min=2,max=200"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ResidentID  *uuid.UUID `json:"resident_id"`
	GroupID     *uuid.UUID `json:"group_id"`
	DueAt       *time.Time `json:"due_at"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress completed cancelled"`
}

type ReassignTaskRequest struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
	Reason   string    `json:"reason" binding:"max=500"`
}

type RejectReassignmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
