package medicalhistory

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/medicalhistory"
)

type Handler struct {
	svc *medicalhistory.Service
}

func NewHandler(svc *medicalhistory.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermMedicalHistoryWrite)
	audit := g.Audited("medical_history")

	records := r.Group("/medical-history")
	{
		records.GET("", h.List)
		records.POST("", write, audit, h.Create)
		records.GET("/:id", h.Get)
		records.PUT("/:id", write, audit, h.Update)
		records.DELETE("/:id", write, audit, h.Delete)
	}
	r.GET("/residents/:id/medical-history", h.Summary)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateMedicalHistoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.Create(c.Request.Context(), handler.Claims(c).UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, record)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	record, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, record)
}

// List filters by ?resident_id=, ?type= and ?status=.
func (h *Handler) List(c *gin.Context) {
	var filter model.MedicalHistoryFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	residentID, ok := handler.QueryUUID(c, "resident_id")
	if !ok {
		return
	}
	filter.ResidentID = residentID

	records, err := h.svc.List(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, records)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateMedicalHistoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, record)
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
	handler.RespondMessage(c, "record deleted")
}

func (h *Handler) Summary(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), residentID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, summary)
}
