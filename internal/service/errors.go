// Package service holds helpers shared by the domain service packages.
package service

import (
	"errors"

	"github.com/careconnect/careconnect-api/internal/repository"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

// RepoError converts a repository error into an AppError naming resource.
// AppErrors pass through unchanged.
func RepoError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(resource+" already exists", err)
	default:
		return apperrors.Internal(err)
	}
}
