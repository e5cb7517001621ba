package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/middleware"
	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

const activeScholarshipsKey = "scholarships:active"

// ScholarshipHandler exposes funding call administration.
type ScholarshipHandler struct {
	scholarships *service.ScholarshipService
	cache        *service.CacheService
}

// NewScholarshipHandler constructs ScholarshipHandler.
func NewScholarshipHandler(scholarships *service.ScholarshipService, cache *service.CacheService) *ScholarshipHandler {
	return &ScholarshipHandler{scholarships: scholarships, cache: cache}
}

// List godoc
// @Summary List scholarship calls
// @Tags Scholarships
// @Produce json
// @Param active query bool false "Only open calls"
// @Success 200 {object} response.Envelope
// @Router /scholarships [get]
func (h *ScholarshipHandler) List(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") == "true"

	if onlyActive {
		var cached []models.Scholarship
		if hit, _ := h.cache.Get(c.Request.Context(), activeScholarshipsKey, &cached); hit {
			middleware.SetCacheHit(c, true)
			response.JSON(c, http.StatusOK, cached, nil, middleware.ExtractMeta(c))
			return
		}
	}

	scholarships, err := h.scholarships.List(c.Request.Context(), onlyActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	if onlyActive {
		_ = h.cache.Set(c.Request.Context(), activeScholarshipsKey, scholarships, 0)
		middleware.SetCacheHit(c, false)
		response.JSON(c, http.StatusOK, scholarships, nil, middleware.ExtractMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, scholarships, nil)
}

// Get godoc
// @Summary Get a scholarship call
// @Tags Scholarships
// @Produce json
// @Param id path string true "Scholarship ID"
// @Success 200 {object} response.Envelope
// @Router /scholarships/{id} [get]
func (h *ScholarshipHandler) Get(c *gin.Context) {
	scholarship, err := h.scholarships.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scholarship, nil)
}

// Create godoc
// @Summary Open a scholarship call
// @Description Seeds a quota row per active career
// @Tags Scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateScholarshipRequest true "Call payload"
// @Success 201 {object} response.Envelope
// @Router /scholarships [post]
func (h *ScholarshipHandler) Create(c *gin.Context) {
	var req service.CreateScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scholarship, err := h.scholarships.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "scholarships:*")
	response.Created(c, scholarship)
}

// Update godoc
// @Summary Edit a scholarship call
// @Tags Scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Param payload body service.UpdateScholarshipRequest true "Call payload"
// @Success 200 {object} response.Envelope
// @Router /scholarships/{id} [put]
func (h *ScholarshipHandler) Update(c *gin.Context) {
	var req service.UpdateScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scholarship, err := h.scholarships.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "scholarships:*")
	response.JSON(c, http.StatusOK, scholarship, nil)
}

// Deactivate godoc
// @Summary Close a scholarship call
// @Tags Scholarships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Success 204 {object} response.Envelope
// @Router /scholarships/{id} [delete]
func (h *ScholarshipHandler) Deactivate(c *gin.Context) {
	if err := h.scholarships.Deactivate(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "scholarships:*")
	response.NoContent(c)
}

// Quotas godoc
// @Summary Seat allocation per career
// @Tags Scholarships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Success 200 {object} response.Envelope
// @Router /scholarships/{id}/quotas [get]
func (h *ScholarshipHandler) Quotas(c *gin.Context) {
	quotas, err := h.scholarships.Quotas(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quotas, nil)
}

// SetQuota godoc
// @Summary Change the seat count for one career
// @Description Shrinking below seats already in use is rejected
// @Tags Scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Param payload body service.SetQuotaRequest true "Quota payload"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarships/{id}/quotas [put]
func (h *ScholarshipHandler) SetQuota(c *gin.Context) {
	var req service.SetQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.scholarships.SetQuota(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
