package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/pkg/auth"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
	"github.com/careconnect/careconnect-api/pkg/security"
)

type UserServicer interface {
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, int64, error)
	UpdateUser(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeactivateUser(ctx context.Context, actor *auth.Claims, id uuid.UUID) error
}

type Service struct {
	repo      repository.UserRepository
	tokenRepo repository.TokenRepository
	tx        repository.Transactor
	hasher    security.PasswordHasher
}

func NewService(repo repository.UserRepository, tokenRepo repository.TokenRepository,
	tx repository.Transactor, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:      repo,
		tokenRepo: tokenRepo,
		tx:        tx,
		hasher:    hasher,
	}
}

func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if security.IsPolicyError(err) {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         req.Role,
		Status:       model.UserStatusActive,
		Phone:        req.Phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("user", err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, int64, error) {
	filter.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return users, total, nil
}

// UpdateUser applies req. Admins may change anything; other users may only
// edit their own name and phone.
func (s *Service) UpdateUser(ctx context.Context, actor *auth.Claims, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	isAdmin := actor.Role == model.RoleAdmin
	if !isAdmin {
		if actor.UserID != id {
			return nil, apperrors.Forbidden("you can only edit your own profile")
		}
		if req.Role != nil || req.Status != nil {
			return nil, apperrors.Forbidden("only administrators can change role or status")
		}
	}
	if isAdmin && actor.UserID == id && req.Status != nil && *req.Status == model.UserStatusInactive {
		return nil, apperrors.BadRequest("you cannot deactivate your own account", nil)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("user", err)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	deactivated := false
	if req.Status != nil {
		deactivated = user.IsActive() && *req.Status == model.UserStatusInactive
		user.Status = *req.Status
	}

	if !deactivated {
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, service.RepoError("user", err)
		}
		return user, nil
	}
	if err := s.deactivate(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser soft-deletes an account and ends its sessions.
func (s *Service) DeactivateUser(ctx context.Context, actor *auth.Claims, id uuid.UUID) error {
	if actor.UserID == id {
		return apperrors.BadRequest("you cannot deactivate your own account", nil)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return service.RepoError("user", err)
	}
	if user.Status == model.UserStatusInactive {
		return nil
	}
	user.Status = model.UserStatusInactive
	return s.deactivate(ctx, user)
}

// deactivate stores the inactive user and revokes its refresh tokens together.
func (s *Service) deactivate(ctx context.Context, user *model.User) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, user); err != nil {
			return service.RepoError("user", err)
		}
		if err := s.tokenRepo.RevokeUserRefreshTokens(ctx, user.ID, user.UpdatedAt); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}
