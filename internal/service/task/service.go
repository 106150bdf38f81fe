// Package task handles staff tasks, their status workflow and reassignment requests.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/internal/service/event"
	"github.com/careconnect/careconnect-api/pkg/auth"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo     repository.TaskRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.TaskRepository, userRepo repository.UserRepository,
	tx repository.Transactor, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		tx:       tx,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, actor *auth.Claims, req *model.CreateTaskRequest) (*model.Task, error) {
	if err := s.checkAssignee(ctx, req.AssignedTo); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Priority:           req.Priority,
		Status:             model.TaskStatusPending,
		AssignedTo:         req.AssignedTo,
		CreatedBy:          actor.UserID,
		ResidentID:         req.ResidentID,
		GroupID:            req.GroupID,
		DueAt:              utc(req.DueAt),
		ReassignmentStatus: model.ReassignmentNone,
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperrors.Internal(err)
	}
	return task, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("task", err)
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, filter *model.TaskFilter) ([]*model.Task, int64, error) {
	filter.Normalize()
	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return tasks, total, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(actor) && actor.UserID != task.CreatedBy && actor.UserID != task.AssignedTo {
		return nil, apperrors.Forbidden("only the creator, the assignee or an administrator can edit this task")
	}
	if task.IsTerminal() {
		return nil, apperrors.Validation(fmt.Sprintf("a %s task cannot be edited", task.Status))
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.ResidentID != nil {
		task.ResidentID = req.ResidentID
	}
	if req.GroupID != nil {
		task.GroupID = req.GroupID
	}
	if req.DueAt != nil {
		task.DueAt = utc(req.DueAt)
		// a new due date earns a new overdue notice
		task.OverdueNotifiedAt = nil
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, service.RepoError("task", err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Claims, id uuid.UUID) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin(actor) && actor.UserID != task.CreatedBy {
		return apperrors.Forbidden("only the creator or an administrator can delete this task")
	}
	return service.RepoError("task", s.repo.Delete(ctx, id))
}

// UpdateStatus moves the task through its workflow. A task that reaches a
// terminal status drops any pending reassignment request.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.UpdateTaskStatusRequest) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(actor) && actor.UserID != task.AssignedTo {
		return nil, apperrors.Forbidden("only the assignee or an administrator can change task status")
	}
	if task.Status == req.Status {
		return task, nil
	}
	if !model.CanTransitionTask(task.Status, req.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("cannot move task from %s to %s", task.Status, req.Status))
	}

	task.Status = req.Status
	if task.Status == model.TaskStatusCompleted {
		now := s.now()
		task.CompletedAt = &now
	}
	if task.IsTerminal() && task.ReassignmentStatus == model.ReassignmentPending {
		task.ReassignmentStatus = model.ReassignmentNone
		task.ReassignTo = nil
		task.ReassignRequestedBy = nil
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, service.RepoError("task", err)
	}
	return task, nil
}

// Reassign opens a reassignment request towards req.ToUserID.
func (s *Service) Reassign(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.ReassignTaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(actor) && actor.UserID != task.AssignedTo {
		return nil, apperrors.Forbidden("only the assignee or an administrator can reassign this task")
	}
	if task.IsTerminal() {
		return nil, apperrors.Validation(fmt.Sprintf("a %s task cannot be reassigned", task.Status))
	}
	if task.ReassignmentStatus == model.ReassignmentPending {
		return nil, apperrors.Conflict("task already has a pending reassignment request", nil)
	}
	if req.ToUserID == task.AssignedTo {
		return nil, apperrors.Validation("task is already assigned to this user")
	}
	if err := s.checkAssignee(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	to := req.ToUserID
	requestedBy := actor.UserID
	task.ReassignTo = &to
	task.ReassignRequestedBy = &requestedBy
	task.ReassignmentStatus = model.ReassignmentPending
	task.ReassignmentReason = strings.TrimSpace(req.Reason)

	if err := s.save(ctx, task, model.EventTaskReassignmentRequested, actor.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

// AcceptReassignment hands the task to the requested user.
func (s *Service) AcceptReassignment(ctx context.Context, actor *auth.Claims, id uuid.UUID) (*model.Task, error) {
	task, err := s.pendingFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	task.AssignedTo = *task.ReassignTo
	task.Status = model.TaskStatusPending
	task.ReassignmentStatus = model.ReassignmentAccepted
	task.OverdueNotifiedAt = nil

	if err := s.save(ctx, task, model.EventTaskReassignmentAccepted, actor.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

// RejectReassignment declines the request; the assignee is unchanged.
func (s *Service) RejectReassignment(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.RejectReassignmentRequest) (*model.Task, error) {
	task, err := s.pendingFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	task.ReassignmentStatus = model.ReassignmentRejected
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		task.ReassignmentReason = reason
	}

	if err := s.save(ctx, task, model.EventTaskReassignmentRejected, actor.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

// SweepOverdue emits one TASK_OVERDUE event per overdue task that has not been
// announced yet. It returns the number of tasks announced.
func (s *Service) SweepOverdue(ctx context.Context, batchSize int) (int, error) {
	now := s.now()
	tasks, err := s.repo.ListOverdueUnnotified(ctx, now, batchSize)
	if err != nil {
		return 0, apperrors.Internal(err)
	}

	notified := 0
	for _, t := range tasks {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.repo.MarkOverdueNotified(ctx, t.ID, now); err != nil {
				return err
			}
			return s.events.Emit(ctx, model.EventTaskOverdue, payload(t, t.CreatedBy))
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// announced by a concurrent sweep
			continue
		case err != nil:
			return notified, apperrors.Internal(err)
		}
		notified++
	}
	if notified > 0 {
		log.Info().Int("count", notified).Msg("Announced overdue tasks")
	}
	return notified, nil
}

func (s *Service) pendingFor(ctx context.Context, actor *auth.Claims, id uuid.UUID) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.ReassignmentStatus != model.ReassignmentPending || task.ReassignTo == nil {
		return nil, apperrors.Conflict("task has no pending reassignment request", nil)
	}
	if *task.ReassignTo != actor.UserID {
		return nil, apperrors.Forbidden("only the requested user can answer this reassignment")
	}
	return task, nil
}

func (s *Service) save(ctx context.Context, task *model.Task, eventType string, actorID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, task); err != nil {
			return err
		}
		return s.events.Emit(ctx, eventType, payload(task, actorID))
	})
	return service.RepoError("task", err)
}

func (s *Service) checkAssignee(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Validation("assignee does not exist")
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if !user.IsActive() {
		return apperrors.Validation("assignee is not an active user")
	}
	return nil
}

func payload(t *model.Task, actorID uuid.UUID) model.TaskEventPayload {
	return model.TaskEventPayload{
		TaskID:     t.ID,
		Title:      t.Title,
		AssignedTo: t.AssignedTo,
		ReassignTo: t.ReassignTo,
		ActorID:    actorID,
		Reason:     t.ReassignmentReason,
		DueAt:      t.DueAt,
	}
}

func isAdmin(actor *auth.Claims) bool {
	return actor.Role == model.RoleAdmin
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
