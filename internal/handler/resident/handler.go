package resident

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/export"
	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/resident"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Handler struct {
	service resident.ResidentService
}

func NewHandler(service resident.ResidentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermResidentWrite)
	audit := g.Audited("resident")

	residents := r.Group("/residents")
	{
		residents.GET("", h.ListResidents)
		residents.POST("", write, audit, h.CreateResident)
		residents.GET("/export", g.Permission(model.PermExport), h.ExportRoster)
		residents.GET("/:id", h.GetResident)
		residents.PUT("/:id", write, audit, h.UpdateResident)
		residents.DELETE("/:id", g.Permission(model.PermResidentDelete), audit, h.DeleteResident)
	}
}

func (h *Handler) CreateResident(c *gin.Context) {
	var req model.CreateResidentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	res, err := h.service.CreateResident(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, res)
}

func (h *Handler) GetResident(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.GetResident(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, res)
}

func (h *Handler) ListResidents(c *gin.Context) {
	var filter model.ResidentFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	groupID, ok := handler.QueryUUID(c, "group_id")
	if !ok {
		return
	}
	filter.GroupID = groupID

	residents, total, err := h.service.ListResidents(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondList(c, residents, filter.Pagination, total)
}

func (h *Handler) UpdateResident(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateResidentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	res, err := h.service.UpdateResident(c.Request.Context(), handler.Claims(c).UserID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, res)
}

func (h *Handler) DeleteResident(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteResident(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "resident deleted")
}

// ExportRoster downloads the roster as a spreadsheet, optionally limited by ?status=.
func (h *Handler) ExportRoster(c *gin.Context) {
	residents, err := h.service.Roster(c.Request.Context(), c.Query("status"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	data, err := export.Roster(residents)
	if err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return
	}
	handler.SendFile(c, export.ContentType, export.FileName("residents", time.Now().UTC()), data)
}
