package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const auditColumns = `id, user_id, action, entity_type, entity_id, method, path, status_code,
	ip_address, user_agent, request_id, created_at`

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, action, entity_type, entity_id, method, path, status_code,
			ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := r.exec(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID, log.Method, log.Path,
		log.StatusCode, log.IPAddress, log.UserAgent, log.RequestID, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	w := &where{}
	if filter.UserID != nil {
		w.add("user_id = $%[1]d", *filter.UserID)
	}
	if filter.EntityType != "" {
		w.add("entity_type = $%[1]d", filter.EntityType)
	}
	if filter.Action != "" {
		w.add("action = $%[1]d", filter.Action)
	}
	if filter.From != nil {
		w.add("created_at >= $%[1]d", *filter.From)
	}
	if filter.To != nil {
		w.add("created_at < $%[1]d", *filter.To)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	tail, args := w.page(filter.PageSize, filter.Offset())
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.String() + ` ORDER BY created_at DESC` + tail

	var logs []*model.AuditLog
	if err := r.selectAll(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return res.RowsAffected()
}
