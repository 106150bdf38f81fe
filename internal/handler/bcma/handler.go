package bcma

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/bcma"
)

type Handler struct {
	svc *bcma.Service
}

func NewHandler(svc *bcma.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	rg := r.Group("/bcma")
	{
		rg.POST("/scan", h.Scan)
		rg.POST("/verify", h.Verify)
		rg.POST("/administer", g.Permission(model.PermMedicationAdminister), g.Audited("administration"), h.Administer)
	}
}

func (h *Handler) Scan(c *gin.Context) {
	var req model.ScanRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Scan(c.Request.Context(), req.ResidentBarcode)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, result)
}

// Verify always answers 200; a mismatch is reported through matched and reasons.
func (h *Handler) Verify(c *gin.Context) {
	var req model.VerifyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	v, err := h.svc.Verify(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, v)
}

func (h *Handler) Administer(c *gin.Context) {
	var req model.AdministerRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.Administer(c.Request.Context(), handler.Claims(c).UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, record)
}
