package activity

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
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

var start = time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("stores participants", func(t *testing.T) {
		repo := &mocks.ActivityRepository{}
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()
		r1, r2 := uuid.New(), uuid.New()

		a, err := NewService(repo, &mocks.GroupRepository{}).Create(ctx, actor, &model.CreateActivityRequest{
			Title: "Garden walk", Category: "outing", StartTime: start, EndTime: start.Add(time.Hour),
			ResidentIDs: []uuid.UUID{r1, r2},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{r1.String(), r2.String()}, []string(a.ResidentIDs))
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewService(&mocks.ActivityRepository{}, &mocks.GroupRepository{}).Create(ctx, actor, &model.CreateActivityRequest{
			Title: "Bingo", Category: "social", StartTime: start, EndTime: start,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})

	t.Run("unknown group", func(t *testing.T) {
		groups := &mocks.GroupRepository{}
		groupID := uuid.New()
		groups.On("GetByID", ctx, groupID).Return(nil, repository.ErrNotFound)

		_, err := NewService(&mocks.ActivityRepository{}, groups).Create(ctx, actor, &model.CreateActivityRequest{
			Title: "Bingo", Category: "social", StartTime: start, EndTime: start.Add(time.Hour), GroupID: &groupID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("window too large", func(t *testing.T) {
		to := start.AddDate(1, 1, 0)
		_, err := NewService(&mocks.ActivityRepository{}, &mocks.GroupRepository{}).List(ctx, &start, &to, nil)
		assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
	})

	t.Run("defaults to a month from from", func(t *testing.T) {
		repo := &mocks.ActivityRepository{}
		repo.On("List", ctx, mock.MatchedBy(func(f *model.ActivityFilter) bool {
			return f.From.Equal(start) && f.To.Equal(start.AddDate(0, 1, 0))
		})).Return([]*model.Activity{{Title: "Bingo"}}, nil).Once()

		list, err := NewService(repo, &mocks.GroupRepository{}).List(ctx, &start, nil, nil)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdate_ClearsGroup(t *testing.T) {
	ctx := context.Background()
	id, groupID := uuid.New(), uuid.New()
	repo := &mocks.ActivityRepository{}
	repo.On("GetByID", ctx, id).Return(&model.Activity{StartTime: start, EndTime: start.Add(time.Hour), GroupID: &groupID}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil).Once()

	nilGroup := uuid.Nil
	a, err := NewService(repo, &mocks.GroupRepository{}).Update(ctx, id, &model.UpdateActivityRequest{GroupID: &nilGroup})
	require.NoError(t, err)
	assert.Nil(t, a.GroupID)
}
