package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Record stores a single audit entry.
func (s *Service) Record(ctx context.Context, log *model.AuditLog) error {
	if log.Action == "" || log.EntityType == "" {
		return fmt.Errorf("audit log requires action and entity type")
	}
	return s.repo.Create(ctx, log)
}

func (s *Service) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	filter.Normalize()
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup removes entries older than retentionDays.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.repo.DeleteBefore(ctx, before)
}
