package user

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/user"
)

type Handler struct {
	service user.UserServicer
	// forget drops cached state about a user whose status may have changed.
	forget func(userID string)
}

func NewHandler(service user.UserServicer, forget func(userID string)) *Handler {
	if forget == nil {
		forget = func(string) {}
	}
	return &Handler{service: service, forget: forget}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	manage := g.Permission(model.PermUserManage)
	audit := g.Audited("user")

	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.GET("", manage, h.ListUsers)
		users.POST("", manage, audit, h.CreateUser)
		users.GET("/:id", manage, h.GetUser)
		users.PUT("/:id", audit, h.UpdateUser)
		users.DELETE("/:id", manage, audit, h.DeactivateUser)
	}
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.service.GetUser(c.Request.Context(), handler.Claims(c).UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, u)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	u, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filter model.UserFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondList(c, users, filter.Pagination, total)
}

// UpdateUser is open to every caller; the service restricts non-admins to
// their own name and phone.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	u, err := h.service.UpdateUser(c.Request.Context(), handler.Claims(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if req.Status != nil {
		h.forget(id.String())
	}
	handler.RespondOK(c, u)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), handler.Claims(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	h.forget(id.String())
	handler.RespondMessage(c, "user deactivated")
}
