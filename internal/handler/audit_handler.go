package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// AuditHandler exposes the administrative audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit entries
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param module query string false "Module filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.AuditFilter{
		Module:   c.Query("module"),
		Page:     page,
		PageSize: size,
	}
	entries, total, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, paginationMeta(page, size, total))
}
