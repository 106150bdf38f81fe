package group

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/group"
)

type Handler struct {
	svc *group.Service
}

func NewHandler(svc *group.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	manage := g.Permission(model.PermGroupManage)
	audit := g.Audited("group")

	groups := r.Group("/groups")
	{
		groups.GET("", h.List)
		groups.POST("", manage, audit, h.Create)
		groups.GET("/:id", h.Get)
		groups.PUT("/:id", manage, audit, h.Update)
		groups.DELETE("/:id", manage, audit, h.Delete)

		groups.GET("/:id/members", h.ListMembers)
		groups.POST("/:id/members", manage, audit, h.AddMember)
		groups.DELETE("/:id/members/:userId", manage, audit, h.RemoveMember)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateGroupRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	grp, err := h.svc.Create(c.Request.Context(), handler.Claims(c).UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, grp)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	grp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, grp)
}

func (h *Handler) List(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, groups)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateGroupRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	grp, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, grp)
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
	handler.RespondMessage(c, "group deleted")
}

func (h *Handler) ListMembers(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, members)
}

func (h *Handler) AddMember(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AddGroupMemberRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.AddMember(c.Request.Context(), id, req.UserID); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "member added")
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	userID, ok := handler.ParamID(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "member removed")
}
