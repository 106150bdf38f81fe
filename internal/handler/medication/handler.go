package medication

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/export"
	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/medication"
	"github.com/careconnect/careconnect-api/internal/service/resident"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Handler struct {
	svc       *medication.Service
	residents resident.ResidentService
}

func NewHandler(svc *medication.Service, residents resident.ResidentService) *Handler {
	return &Handler{svc: svc, residents: residents}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	write := g.Permission(model.PermMedicationWrite)
	audit := g.Audited("medication")

	meds := r.Group("/residents/:id/medications")
	{
		meds.GET("", h.List)
		meds.POST("", write, audit, h.Create)
		meds.GET("/:medId", h.Get)
		meds.PUT("/:medId", write, audit, h.Update)
		meds.DELETE("/:medId", write, audit, h.Delete)
	}

	r.GET("/residents/:id/administrations", h.Administrations)
	r.GET("/residents/:id/administrations/export", g.Permission(model.PermExport), h.ExportAdministrations)
}

func (h *Handler) Create(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateMedicationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	med, err := h.svc.Create(c.Request.Context(), residentID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, med)
}

func (h *Handler) Get(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "medId")
	if !ok {
		return
	}

	med, err := h.svc.Get(c.Request.Context(), residentID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, med)
}

func (h *Handler) List(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	meds, err := h.svc.List(c.Request.Context(), residentID, c.Query("status"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, meds)
}

func (h *Handler) Update(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "medId")
	if !ok {
		return
	}
	var req model.UpdateMedicationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	med, err := h.svc.Update(c.Request.Context(), residentID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, med)
}

func (h *Handler) Delete(c *gin.Context) {
	residentID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "medId")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), residentID, id); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondMessage(c, "medication deleted")
}

func (h *Handler) Administrations(c *gin.Context) {
	residentID, from, to, ok := recordWindow(c)
	if !ok {
		return
	}

	records, err := h.svc.Administrations(c.Request.Context(), residentID, from, to)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, records)
}

func (h *Handler) ExportAdministrations(c *gin.Context) {
	residentID, from, to, ok := recordWindow(c)
	if !ok {
		return
	}

	res, err := h.residents.GetResident(c.Request.Context(), residentID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	records, err := h.svc.Administrations(c.Request.Context(), residentID, from, to)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	data, err := export.MAR(res, records, time.UTC)
	if err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return
	}
	handler.SendFile(c, export.ContentType, export.FileName("mar-"+res.Barcode, time.Now().UTC()), data)
}

func recordWindow(c *gin.Context) (id uuid.UUID, from, to *time.Time, ok bool) {
	if id, ok = handler.ParamID(c, "id"); !ok {
		return
	}
	if from, ok = handler.QueryTime(c, "from"); !ok {
		return
	}
	to, ok = handler.QueryTime(c, "to")
	return
}
