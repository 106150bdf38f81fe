package wellness

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/wellness"
)

type Handler struct {
	svc *wellness.Service
}

func NewHandler(svc *wellness.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermWellnessWrite)
	audit := g.Audited("wellness_report")

	r.GET("/residents/:id/wellness-reports", h.List)
	r.POST("/residents/:id/wellness-reports", write, audit, h.Create)

	reports := r.Group("/wellness-reports")
	{
		reports.GET("/:id", h.Get)
		reports.PUT("/:id", write, audit, h.Update)
		reports.DELETE("/:id", write, audit, h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateWellnessReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.Create(c.Request.Context(), handler.Claims(c).UserID, residentID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, report)
}

// List returns a resident's reports, optionally bounded by ?from= and ?to=.
func (h *Handler) List(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	from, ok := handler.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := handler.QueryTime(c, "to")
	if !ok {
		return
	}

	reports, err := h.svc.List(c.Request.Context(), residentID, from, to)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, reports)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	report, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, report)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateWellnessReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, report)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "wellness report deleted")
}
