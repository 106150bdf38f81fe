package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo      repository.ActivityRepository
	groupRepo repository.GroupRepository
}

func NewService(repo repository.ActivityRepository, groupRepo repository.GroupRepository) *Service {
	return &Service{repo: repo, groupRepo: groupRepo}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateActivityRequest) (*model.Activity, error) {
	a := &model.Activity{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		Category:    req.Category,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		AllDay:      req.AllDay,
		GroupID:     req.GroupID,
		ResidentIDs: model.UUIDStrings(req.ResidentIDs),
		CreatedBy:   actorID,
	}
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("activity", err)
	}
	return a, nil
}

// List returns activities overlapping [from, to). The window defaults to the
// current month.
func (s *Service) List(ctx context.Context, from, to *time.Time, groupID *uuid.UUID) ([]*model.Activity, error) {
	filter := &model.ActivityFilter{GroupID: groupID}
	now := time.Now().UTC()
	switch {
	case from != nil:
		filter.From = from.UTC()
	default:
		filter.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	switch {
	case to != nil:
		filter.To = to.UTC()
	default:
		filter.To = filter.From.AddDate(0, 1, 0)
	}

	if !filter.To.After(filter.From) {
		return nil, apperrors.BadRequest("to must be after from", nil)
	}
	if filter.To.Sub(filter.From) > model.MaxActivityWindow {
		return nil, apperrors.BadRequest("calendar window cannot exceed 366 days", nil)
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateActivityRequest) (*model.Activity, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Location != nil {
		a.Location = strings.TrimSpace(*req.Location)
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.StartTime != nil {
		a.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		a.EndTime = req.EndTime.UTC()
	}
	if req.AllDay != nil {
		a.AllDay = *req.AllDay
	}
	if req.GroupID != nil {
		if *req.GroupID == uuid.Nil {
			a.GroupID = nil
		} else {
			a.GroupID = req.GroupID
		}
	}
	if req.ResidentIDs != nil {
		a.ResidentIDs = model.UUIDStrings(req.ResidentIDs)
	}
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, service.RepoError("activity", err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("activity", s.repo.Delete(ctx, id))
}

func (s *Service) validate(ctx context.Context, a *model.Activity) error {
	if !a.EndTime.After(a.StartTime) {
		return apperrors.Validation("invalid activity times", "end_time must be after start_time")
	}
	if a.GroupID != nil {
		_, err := s.groupRepo.GetByID(ctx, *a.GroupID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Validation("invalid activity group", "group does not exist")
		}
		if err != nil {
			return apperrors.Internal(err)
		}
	}
	return nil
}
