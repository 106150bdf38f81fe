package task

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	"github.com/careconnect/careconnect-api/pkg/auth"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type emitter struct{ mock.Mock }

func (e *emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return e.Called(ctx, eventType, payload).Error(0)
}

type fixture struct {
	svc    *Service
	tasks  *mocks.TaskRepository
	users  *mocks.UserRepository
	events *emitter
}

func newFixture() *fixture {
	f := &fixture{tasks: &mocks.TaskRepository{}, users: &mocks.UserRepository{}, events: &emitter{}}
	f.svc = NewService(f.tasks, f.users, mocks.Transactor{}, f.events)
	return f
}

func claims(role string) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: role}
}

func activeUser(id uuid.UUID) *model.User {
	return &model.User{Base: model.Base{ID: id}, Status: model.UserStatusActive}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	actor := claims(model.RoleNurse)
	assignee := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByID", ctx, assignee).Return(activeUser(assignee), nil)
		f.tasks.On("Create", ctx, mock.Anything).Return(nil).Once()

		task, err := f.svc.Create(ctx, actor, &model.CreateTaskRequest{Title: "Change linens", AssignedTo: assignee})
		require.NoError(t, err)
		assert.Equal(t, model.TaskPriorityMedium, task.Priority)
		assert.Equal(t, model.TaskStatusPending, task.Status)
		assert.Equal(t, model.ReassignmentNone, task.ReassignmentStatus)
		assert.Equal(t, actor.UserID, task.CreatedBy)
	})

	t.Run("inactive assignee", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByID", ctx, assignee).Return(&model.User{Status: model.UserStatusInactive}, nil)

		_, err := f.svc.Create(ctx, actor, &model.CreateTaskRequest{Title: "Change linens", AssignedTo: assignee})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("completion sets completed_at and drops pending request", func(t *testing.T) {
		f := newFixture()
		actor := claims(model.RoleCaregiver)
		target := uuid.New()
		task := &model.Task{
			Base: model.Base{ID: uuid.New()}, Status: model.TaskStatusInProgress, AssignedTo: actor.UserID,
			ReassignmentStatus: model.ReassignmentPending, ReassignTo: &target,
		}
		f.tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		f.tasks.On("Update", ctx, task).Return(nil).Once()

		got, err := f.svc.UpdateStatus(ctx, actor, task.ID, &model.UpdateTaskStatusRequest{Status: model.TaskStatusCompleted})
		require.NoError(t, err)
		assert.NotNil(t, got.CompletedAt)
		assert.Equal(t, model.ReassignmentNone, got.ReassignmentStatus)
		assert.Nil(t, got.ReassignTo)
	})

	t.Run("terminal status is final", func(t *testing.T) {
		f := newFixture()
		actor := claims(model.RoleAdmin)
		id := uuid.New()
		f.tasks.On("GetByID", ctx, id).Return(&model.Task{Status: model.TaskStatusCancelled}, nil)

		_, err := f.svc.UpdateStatus(ctx, actor, id, &model.UpdateTaskStatusRequest{Status: model.TaskStatusPending})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.tasks.On("GetByID", ctx, id).Return(&model.Task{Status: model.TaskStatusPending, AssignedTo: uuid.New()}, nil)

		_, err := f.svc.UpdateStatus(ctx, claims(model.RoleNurse), id, &model.UpdateTaskStatusRequest{Status: model.TaskStatusInProgress})
		assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))
	})
}

func TestReassignmentFlow(t *testing.T) {
	ctx := context.Background()
	assignee := claims(model.RoleCaregiver)
	target := claims(model.RoleCaregiver)

	task := &model.Task{
		Base: model.Base{ID: uuid.New()}, Title: "Evening round", Status: model.TaskStatusInProgress,
		AssignedTo: assignee.UserID, ReassignmentStatus: model.ReassignmentNone,
	}

	f := newFixture()
	f.tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	f.tasks.On("Update", ctx, task).Return(nil)
	f.users.On("GetByID", ctx, target.UserID).Return(activeUser(target.UserID), nil)
	f.events.On("Emit", ctx, model.EventTaskReassignmentRequested, mock.MatchedBy(func(p model.TaskEventPayload) bool {
		return p.ReassignTo != nil && *p.ReassignTo == target.UserID && p.Reason == "shift ended"
	})).Return(nil).Once()
	f.events.On("Emit", ctx, model.EventTaskReassignmentAccepted, mock.Anything).Return(nil).Once()

	_, err := f.svc.Reassign(ctx, assignee, task.ID, &model.ReassignTaskRequest{ToUserID: target.UserID, Reason: "shift ended"})
	require.NoError(t, err)
	assert.Equal(t, model.ReassignmentPending, task.ReassignmentStatus)

	_, err = f.svc.Reassign(ctx, assignee, task.ID, &model.ReassignTaskRequest{ToUserID: target.UserID})
	assert.Equal(t, http.StatusConflict, apperrors.StatusCode(err), "second pending request")

	_, err = f.svc.AcceptReassignment(ctx, assignee, task.ID)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err), "only the target answers")

	got, err := f.svc.AcceptReassignment(ctx, target, task.ID)
	require.NoError(t, err)
	assert.Equal(t, target.UserID, got.AssignedTo)
	assert.Equal(t, model.TaskStatusPending, got.Status)
	assert.Equal(t, model.ReassignmentAccepted, got.ReassignmentStatus)
	f.events.AssertExpectations(t)
}

func TestRejectReassignment(t *testing.T) {
	ctx := context.Background()
	target := claims(model.RoleStaff)
	assignee := uuid.New()
	task := &model.Task{
		Base: model.Base{ID: uuid.New()}, Status: model.TaskStatusPending, AssignedTo: assignee,
		ReassignmentStatus: model.ReassignmentPending, ReassignTo: &target.UserID,
	}

	f := newFixture()
	f.tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	f.tasks.On("Update", ctx, task).Return(nil).Once()
	f.events.On("Emit", ctx, model.EventTaskReassignmentRejected, mock.Anything).Return(nil).Once()

	got, err := f.svc.RejectReassignment(ctx, target, task.ID, &model.RejectReassignmentRequest{Reason: "on leave"})
	require.NoError(t, err)
	assert.Equal(t, assignee, got.AssignedTo)
	assert.Equal(t, model.ReassignmentRejected, got.ReassignmentStatus)
	assert.Equal(t, "on leave", got.ReassignmentReason)
}

func TestReassign_Rules(t *testing.T) {
	ctx := context.Background()
	admin := claims(model.RoleAdmin)

	t.Run("to current assignee", func(t *testing.T) {
		f := newFixture()
		assignee := uuid.New()
		id := uuid.New()
		f.tasks.On("GetByID", ctx, id).Return(&model.Task{Status: model.TaskStatusPending, AssignedTo: assignee}, nil)

		_, err := f.svc.Reassign(ctx, admin, id, &model.ReassignTaskRequest{ToUserID: assignee})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})

	t.Run("completed task", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.tasks.On("GetByID", ctx, id).Return(&model.Task{Status: model.TaskStatusCompleted}, nil)

		_, err := f.svc.Reassign(ctx, admin, id, &model.ReassignTaskRequest{ToUserID: uuid.New()})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newFixture()
		id, to := uuid.New(), uuid.New()
		f.tasks.On("GetByID", ctx, id).Return(&model.Task{Status: model.TaskStatusPending, AssignedTo: uuid.New()}, nil)
		f.users.On("GetByID", ctx, to).Return(nil, repository.ErrNotFound)

		_, err := f.svc.Reassign(ctx, admin, id, &model.ReassignTaskRequest{ToUserID: to})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	first := &model.Task{Base: model.Base{ID: uuid.New()}, Title: "Vitals", DueAt: &due}
	second := &model.Task{Base: model.Base{ID: uuid.New()}, Title: "Meds", DueAt: &due}

	f := newFixture()
	f.svc.now = func() time.Time { return now }
	f.tasks.On("ListOverdueUnnotified", ctx, now, 100).Return([]*model.Task{first, second}, nil)
	f.tasks.On("MarkOverdueNotified", ctx, first.ID, now).Return(nil).Once()
	f.tasks.On("MarkOverdueNotified", ctx, second.ID, now).Return(repository.ErrNotFound).Once()
	f.events.On("Emit", ctx, model.EventTaskOverdue, mock.MatchedBy(func(p model.TaskEventPayload) bool {
		return p.TaskID == first.ID
	})).Return(nil).Once()

	n, err := f.svc.SweepOverdue(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.events.AssertExpectations(t)
}
