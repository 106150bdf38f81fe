package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/audit"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	r.GET("/audit-logs", g.Permission(model.PermAuditRead), h.ListLogs)
}

// ListLogs filters by ?user_id=, ?entity_type=, ?action=, ?from= and ?to=, newest first.
func (h *Handler) ListLogs(c *gin.Context) {
	var filter model.AuditFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.UserID, ok = handler.QueryUUID(c, "user_id"); !ok {
		return
	}
	if filter.From, ok = handler.QueryTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = handler.QueryTime(c, "to"); !ok {
		return
	}

	logs, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return
	}
	handler.RespondList(c, logs, filter.Pagination, total)
}
