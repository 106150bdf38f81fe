package activity

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/activity"
)

type Handler struct {
	svc *activity.Service
}

func NewHandler(svc *activity.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermActivityWrite)
	audit := g.Audited("activity")

	activities := r.Group("/activities")
	{
		activities.GET("", h.List)
		activities.POST("", write, audit, h.Create)
		activities.GET("/:id", h.Get)
		activities.PUT("/:id", write, audit, h.Update)
		activities.DELETE("/:id", write, audit, h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateActivityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.svc.Create(c.Request.Context(), handler.Claims(c).UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, a)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, a)
}

// List returns the calendar entries overlapping [from, to).
func (h *Handler) List(c *gin.Context) {
	from, ok := handler.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := handler.QueryTime(c, "to")
	if !ok {
		return
	}
	groupID, ok := handler.QueryUUID(c, "group_id")
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), from, to, groupID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, list)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateActivityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, a)
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
	handler.RespondMessage(c, "activity deleted")
}
