package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/export"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// ApplicationHandler exposes the scholarship application lifecycle.
type ApplicationHandler struct {
	applications *service.ApplicationService
	metrics      *service.MetricsService
	pdf          *export.ApplicationPDF
	csv          *export.ApplicationsCSV
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService, metrics *service.MetricsService) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		metrics:      metrics,
		pdf:          export.NewApplicationPDF(),
		csv:          export.NewApplicationsCSV(),
	}
}

// Submit godoc
// @Summary File a scholarship application
// @Description Public submission endpoint for the application form
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body service.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /public/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}
	app, err := h.applications.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordApplicationStatus(string(app.Status))
	response.Created(c, app)
}

// Resubmit godoc
// @Summary Correct a fixable application
// @Description Re-file an application in Rechazada or Documentación Faltante state
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.SubmitApplicationRequest true "Corrected payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /public/applications/{id} [put]
func (h *ApplicationHandler) Resubmit(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}
	app, err := h.applications.Resubmit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Track godoc
// @Summary Track applications by control number
// @Description Public status lookup, returns a reduced projection
// @Tags Applications
// @Produce json
// @Param controlNumber path string true "Student control number"
// @Success 200 {object} response.Envelope
// @Router /public/applications/track/{controlNumber} [get]
func (h *ApplicationHandler) Track(c *gin.Context) {
	views, err := h.applications.Track(c.Request.Context(), c.Param("controlNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param scholarship query string false "Filter by scholarship"
// @Param career query string false "Filter by career"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or control number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := h.filterFromQuery(c)
	apps, total, err := h.applications.List(c.Request.Context(), filter, careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	detail, err := h.applications.Get(c.Request.Context(), c.Param("id"), careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Transition godoc
// @Summary Move an application through its lifecycle
// @Description Applies quota side effects and folio assignment atomically
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body service.TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) Transition(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}
	app, err := h.applications.Transition(c.Request.Context(), c.Param("id"), req, claimsFromContext(c), careerScopeFromContext(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordApplicationStatus(string(app.Status))
	response.JSON(c, http.StatusOK, app, nil)
}

// ExportPDF godoc
// @Summary Download one application as PDF
// @Tags Applications
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {file} binary
// @Router /applications/{id}/pdf [get]
func (h *ApplicationHandler) ExportPDF(c *gin.Context) {
	detail, err := h.applications.Get(c.Request.Context(), c.Param("id"), careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.pdf.Render(&detail.ScholarshipApplication, detail.ScholarshipName)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF"))
		return
	}
	filename := fmt.Sprintf("solicitud-%s.pdf", detail.ControlNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ExportCSV godoc
// @Summary Download matching applications as CSV
// @Tags Applications
// @Produce text/csv
// @Security BearerAuth
// @Param scholarship query string false "Filter by scholarship"
// @Param career query string false "Filter by career"
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /applications/export [get]
func (h *ApplicationHandler) ExportCSV(c *gin.Context) {
	filter := h.filterFromQuery(c)
	apps, err := h.applications.Export(c.Request.Context(), filter, careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.csv.Render(apps)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV"))
		return
	}
	filename := fmt.Sprintf("solicitudes-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

func (h *ApplicationHandler) filterFromQuery(c *gin.Context) models.ApplicationFilter {
	var filter models.ApplicationFilter
	filter.ScholarshipID = c.Query("scholarship")
	filter.Career = c.Query("career")
	filter.Status = models.ApplicationStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)
	return filter
}
