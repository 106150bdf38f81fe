package careplan

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/careplan"
)

type Handler struct {
	svc *careplan.Service
}

func NewHandler(svc *careplan.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermCarePlanWrite)
	audit := g.Audited("care_plan")

	r.GET("/residents/:id/care-plans", h.ListByResident)
	r.POST("/residents/:id/care-plans", write, audit, h.Create)

	plans := r.Group("/care-plans")
	{
		plans.GET("/:id", h.Get)
		plans.PUT("/:id", write, audit, h.Update)
		plans.DELETE("/:id", write, audit, h.Delete)
		plans.POST("/:id/activate", write, audit, h.Activate)
	}
}

func (h *Handler) Create(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateCarePlanRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	plan, err := h.svc.Create(c.Request.Context(), handler.Claims(c).UserID, residentID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, plan)
}

func (h *Handler) ListByResident(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	plans, err := h.svc.ListByResident(c.Request.Context(), residentID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, plans)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	plan, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, plan)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateCarePlanRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	plan, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, plan)
}

func (h *Handler) Activate(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	plan, err := h.svc.Activate(c.Request.Context(), handler.Claims(c).UserID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, plan)
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
	handler.RespondMessage(c, "care plan deleted")
}
