package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// ComplaintHandler exposes the public mailbox and its staff console.
type ComplaintHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintHandler constructs ComplaintHandler.
func NewComplaintHandler(complaints *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

// Create godoc
// @Summary File a complaint or suggestion
// @Description Public mailbox endpoint, returns the tracking code
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body service.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Router /public/complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req service.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}
	complaint, err := h.complaints.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// Track godoc
// @Summary Track a complaint by its code
// @Tags Complaints
// @Produce json
// @Param code path string true "Tracking code"
// @Success 200 {object} response.Envelope
// @Router /public/complaints/{code} [get]
func (h *ComplaintHandler) Track(c *gin.Context) {
	view, err := h.complaints.Track(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param career query string false "Filter by career"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	var filter models.ComplaintFilter
	filter.Type = models.ComplaintType(c.Query("type"))
	filter.Status = models.ComplaintStatus(c.Query("status"))
	filter.Career = c.Query("career")
	filter.Page, filter.PageSize = pageParams(c)

	complaints, total, err := h.complaints.List(c.Request.Context(), filter, careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, paginationMeta(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get full complaint detail
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Get(c.Request.Context(), c.Param("id"), careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Resolve godoc
// @Summary Record a resolution
// @Description Terminal outcomes notify the reporter by email
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Param payload body service.ResolveComplaintRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/resolve [put]
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	var req service.ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	complaint, err := h.complaints.Resolve(c.Request.Context(), c.Param("id"), req, claimsFromContext(c), careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Delete godoc
// @Summary Delete a complaint
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 204 {object} response.Envelope
// @Router /complaints/{id} [delete]
func (h *ComplaintHandler) Delete(c *gin.Context) {
	if err := h.complaints.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
