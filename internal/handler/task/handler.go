package task

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/task"
)

type Handler struct {
	svc *task.Service
}

func NewHandler(svc *task.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the task board. Ownership rules (creator, assignee,
// reassignment target) are enforced by the service.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	audit := g.Audited("task")

	tasks := r.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("", audit, h.Create)
		tasks.GET("/:id", h.Get)
		tasks.PUT("/:id", audit, h.Update)
		tasks.DELETE("/:id", audit, h.Delete)
		tasks.PUT("/:id/status", audit, h.UpdateStatus)
		tasks.POST("/:id/reassign", audit, h.Reassign)
		tasks.POST("/:id/accept-reassignment", audit, h.AcceptReassignment)
		tasks.POST("/:id/reject-reassignment", audit, h.RejectReassignment)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateTaskRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Create(c.Request.Context(), handler.Claims(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, t)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}

// List supports ?assigned_to=, ?status=, ?priority= and ?overdue=true.
// assigned_to=me is shorthand for the caller.
func (h *Handler) List(c *gin.Context) {
	var filter model.TaskFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	if c.Query("assigned_to") == "me" {
		me := handler.Claims(c).UserID
		filter.AssignedTo = &me
	} else {
		assignee, ok := handler.QueryUUID(c, "assigned_to")
		if !ok {
			return
		}
		filter.AssignedTo = assignee
	}

	tasks, total, err := h.svc.List(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondList(c, tasks, filter.Pagination, total)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateTaskRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Update(c.Request.Context(), handler.Claims(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), handler.Claims(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "task deleted")
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateTaskStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.UpdateStatus(c.Request.Context(), handler.Claims(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}

func (h *Handler) Reassign(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.ReassignTaskRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Reassign(c.Request.Context(), handler.Claims(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}

func (h *Handler) AcceptReassignment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := h.svc.AcceptReassignment(c.Request.Context(), handler.Claims(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}

// RejectReassignment accepts an empty body.
func (h *Handler) RejectReassignment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.RejectReassignmentRequest
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.RejectReassignment(c.Request.Context(), handler.Claims(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, t)
}
