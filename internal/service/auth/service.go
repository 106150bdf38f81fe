package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
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
	"github.com/careconnect/careconnect-api/pkg/security"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 15 * time.Minute
	defaultResetTokenTTL    = time.Hour
	tokenTypeBearer         = "Bearer"
)

var errInvalidCredentials = apperrors.Unauthorized("invalid credentials", nil)

type Config struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	ResetTokenTTL    time.Duration
}

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	tx        repository.Transactor
	events    event.Emitter
	cfg       Config
	now       func() time.Time
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, jwtSvc auth.JWTService,
	hasher security.PasswordHasher, tx repository.Transactor, events event.Emitter, cfg Config) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		tx:        tx,
		events:    events,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a staff or caregiver account and signs it in.
// Privileged roles are created by an admin through the user service.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleStaff && role != model.RoleCaregiver {
		return nil, apperrors.Forbidden("role " + role + " must be assigned by an administrator")
	}

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
		Role:         role,
		Status:       model.UserStatusActive,
		Phone:        req.Phone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, apperrors.Internal(err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, apperrors.Forbidden("account is locked, please try again later")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= s.cfg.MaxLoginAttempts {
			until := now.Add(s.cfg.LockoutDuration)
			user.LockedUntil = &until
			user.FailedLoginAttempts = 0
			log.Warn().Str("user_id", user.ID.String()).Time("locked_until", until).Msg("account locked after failed logins")
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to update login attempts: %w", err))
		}
		return nil, errInvalidCredentials
	}

	if !user.IsActive() {
		return nil, apperrors.Forbidden("account is inactive")
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(req.Password); err == nil {
			user.PasswordHash = hash
		} else {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to upgrade password hash")
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update login timestamp: %w", err))
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. Each refresh token works
// once; presenting a spent token revokes every refresh token of the user.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	record, err := s.tokenRepo.GetRefreshToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token", err)
		}
		return nil, apperrors.Internal(err)
	}
	if record.UserID != claims.UserID {
		return nil, apperrors.Unauthorized("invalid refresh token", nil)
	}
	// logged out, never rotated
	if record.RevokedAt != nil && record.UsedAt == nil {
		return nil, apperrors.Unauthorized("refresh token revoked", nil)
	}

	now := s.now()
	fresh, err := s.tokenRepo.MarkRefreshTokenUsed(ctx, tokenID, now)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !fresh {
		log.Warn().Str("user_id", record.UserID.String()).Msg("refresh token replay, revoking all sessions")
		if err := s.tokenRepo.RevokeUserRefreshTokens(ctx, record.UserID, now); err != nil {
			return nil, apperrors.Internal(err)
		}
		return nil, apperrors.Unauthorized("refresh token already used", nil)
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, service.RepoError("user", err)
	}
	if !user.IsActive() {
		return nil, apperrors.Forbidden("account is inactive")
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokenRepo.RevokeUserRefreshTokens(ctx, userID, s.now()); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ForgotPassword queues a reset email. Unknown or inactive accounts are ignored
// so the caller cannot probe which emails exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}
	if !user.IsActive() {
		return nil
	}

	raw, err := randomToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	now := s.now()
	token := &model.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.CreateResetToken(ctx, token); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventPasswordResetRequested, model.PasswordResetPayload{
			UserID:    user.ID,
			Email:     user.Email,
			Token:     raw,
			ExpiresAt: token.ExpiresAt,
		})
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	invalid := apperrors.BadRequest("invalid or expired reset token", nil)

	token, err := s.tokenRepo.GetResetTokenByHash(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return apperrors.Internal(err)
	}
	now := s.now()
	if token.UsedAt != nil || now.After(token.ExpiresAt) {
		return invalid
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		if security.IsPolicyError(err) {
			return apperrors.BadRequest(err.Error(), err)
		}
		return apperrors.Internal(err)
	}

	return service.RepoError("user", s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		if err := s.tokenRepo.MarkResetTokenUsed(ctx, token.ID, now); err != nil {
			return err
		}
		return s.tokenRepo.RevokeUserRefreshTokens(ctx, user.ID, now)
	}))
}

func (s *Service) issueTokens(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	sub := auth.Subject{ID: user.ID, Email: user.Email, Role: user.Role}

	access, err := s.jwtSvc.GenerateAccessToken(sub)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate access token: %w", err))
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(sub)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate refresh token: %w", err))
	}

	refreshID, err := uuid.Parse(refresh.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.tokenRepo.CreateRefreshToken(ctx, &model.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		ExpiresAt: refresh.ExpiresAt,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to store refresh token: %w", err))
	}

	return &model.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		ExpiresAt:        access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		TokenType:        tokenTypeBearer,
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
