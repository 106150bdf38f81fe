package group

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo     repository.GroupRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.GroupRepository, userRepo repository.UserRepository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateGroupRequest) (*model.Group, error) {
	group := &model.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actorID,
		MemberIDs:   []uuid.UUID{},
	}
	if err := s.ensureNameFree(ctx, group.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, nameError(err)
	}
	return group, nil
}

// Get returns the group with its members loaded.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("group", err)
	}
	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	group.Members = members
	return group, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return groups, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateGroupRequest) (*model.Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("group", err)
	}
	if req.Name != nil {
		group.Name = strings.TrimSpace(*req.Name)
		if err := s.ensureNameFree(ctx, group.Name, group.ID); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, nameError(err)
	}
	return group, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("group", s.repo.Delete(ctx, id))
}

// AddMember is idempotent. Inactive users cannot join.
func (s *Service) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return service.RepoError("group", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return service.RepoError("user", err)
	}
	if !user.IsActive() {
		return apperrors.Validation("inactive users cannot be added to a group")
	}
	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return service.RepoError("group member", s.repo.RemoveMember(ctx, groupID, userID))
}

func (s *Service) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.User, error) {
	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return nil, service.RepoError("group", err)
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return members, nil
}

// ensureNameFree reports a conflict when another group already uses name.
// The unique index still guards concurrent writers.
func (s *Service) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if existing.ID != self {
		return apperrors.Conflict("a group with this name already exists", repository.ErrDuplicate)
	}
	return nil
}

func nameError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.Conflict("a group with this name already exists", err)
	}
	return service.RepoError("group", err)
}
