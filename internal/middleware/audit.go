package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/pkg/auth"
)

// AuditRecorder is implemented by the audit service.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.AuditLog) error
}

type AuditMiddleware struct {
	recorder AuditRecorder
}

func NewAuditMiddleware(recorder AuditRecorder) *AuditMiddleware {
	return &AuditMiddleware{recorder: recorder}
}

// AuditLog records every mutating request against entityType once the handler has run.
func (m *AuditMiddleware) AuditLog(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := actionFor(c.Request.Method)
		if action == "" {
			return
		}

		entry := &model.AuditLog{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID(c),
			Method:     c.Request.Method,
			Path:       c.FullPath(),
			StatusCode: c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  truncate(c.Request.UserAgent(), 255),
			RequestID:  c.GetString(ContextRequestID),
		}
		if claims, ok := auth.FromContext(c.Request.Context()); ok {
			id := claims.UserID
			entry.UserID = &id
		}

		// the request context may already be cancelled once the response is written
		ctx := context.WithoutCancel(c.Request.Context())
		if err := m.recorder.Record(ctx, entry); err != nil {
			log.Error().Err(err).
				Str("entity_type", entityType).
				Str("request_id", entry.RequestID).
				Msg("Failed to write audit log")
		}
	}
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return model.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return model.AuditActionUpdate
	case http.MethodDelete:
		return model.AuditActionDelete
	default:
		return ""
	}
}

// entityID prefers the path id and falls back to the id of a created entity.
func entityID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.GetString(handler.ContextEntityID)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
