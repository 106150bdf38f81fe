package incident

import (
	"github.com/gin-gonic/gin"

	"github.com/careconnect/careconnect-api/internal/handler"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/service/incident"
)

type Handler struct {
	svc *incident.Service
}

func NewHandler(svc *incident.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	manage := g.Permission(model.PermIncidentFormManage)
	formAudit := g.Audited("incident_form")
	reportAudit := g.Audited("incident_report")

	rg := r.Group("/incident")
	{
		rg.GET("/forms", h.ListForms)
		rg.POST("/forms", manage, formAudit, h.CreateForm)
		rg.GET("/forms/:id", h.GetForm)
		rg.PUT("/forms/:id", manage, formAudit, h.UpdateForm)
		rg.DELETE("/forms/:id", manage, formAudit, h.DeleteForm)
		rg.POST("/forms/:id/reports", reportAudit, h.SubmitReport)

		rg.GET("/reports", h.ListReports)
		rg.GET("/reports/:id", h.GetReport)
		rg.PUT("/reports/:id/status", g.Permission(model.PermIncidentReview), reportAudit, h.UpdateReportStatus)
	}
}

func (h *Handler) CreateForm(c *gin.Context) {
	var req model.CreateFormRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	form, err := h.svc.CreateForm(c.Request.Context(), handler.Claims(c).UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, form)
}

func (h *Handler) GetForm(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	form, err := h.svc.GetForm(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, form)
}

func (h *Handler) ListForms(c *gin.Context) {
	forms, err := h.svc.ListForms(c.Request.Context(), c.Query("status"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, forms)
}

func (h *Handler) UpdateForm(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateFormRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	form, err := h.svc.UpdateForm(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, form)
}

// DeleteForm archives templates that already have reports instead of removing them.
func (h *Handler) DeleteForm(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	archived, err := h.svc.DeleteForm(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if archived {
		handler.RespondMessage(c, "form archived")
		return
	}
	handler.RespondMessage(c, "form deleted")
}

func (h *Handler) SubmitReport(c *gin.Context) {
	formID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.SubmitReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.SubmitReport(c.Request.Context(), handler.Claims(c).UserID, formID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondCreated(c, report)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	report, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, report)
}

func (h *Handler) ListReports(c *gin.Context) {
	var filter model.IncidentReportFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.FormID, ok = handler.QueryUUID(c, "form_id"); !ok {
		return
	}
	if filter.ResidentID, ok = handler.QueryUUID(c, "resident_id"); !ok {
		return
	}

	reports, total, err := h.svc.ListReports(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondList(c, reports, filter.Pagination, total)
}

func (h *Handler) UpdateReportStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateReportStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.UpdateReportStatus(c.Request.Context(), handler.Claims(c).UserID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, report)
}
