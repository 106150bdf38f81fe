package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	token.CreatedAt = time.Now().UTC()
	if _, err := r.exec(ctx, query, token.ID, token.UserID, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context, id uuid.UUID) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, expires_at, used_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE id = $1
	`
	var token model.RefreshToken
	if err := r.get(ctx, &token, query, id); err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &token, nil
}

func (r *tokenRepository) MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL AND revoked_at IS NULL
	`
	res, err := r.exec(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark refresh token used: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *tokenRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`
	if _, err := r.exec(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (r *tokenRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now().UTC()
	if _, err := r.exec(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetResetTokenByHash(ctx context.Context, hash string) (*model.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`
	var token model.PasswordResetToken
	if err := r.get(ctx, &token, query, hash); err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &token, nil
}

func (r *tokenRepository) MarkResetTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE password_reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`
	if err := r.execOne(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	for _, query := range []string{
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		`DELETE FROM password_reset_tokens WHERE expires_at < $1`,
	} {
		res, err := r.exec(ctx, query, before)
		if err != nil {
			return total, fmt.Errorf("failed to delete expired tokens: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
