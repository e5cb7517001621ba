package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// SanctionHandler exposes internal member sanctions.
type SanctionHandler struct {
	sanctions *service.SanctionService
}

// NewSanctionHandler constructs SanctionHandler.
func NewSanctionHandler(sanctions *service.SanctionService) *SanctionHandler {
	return &SanctionHandler{sanctions: sanctions}
}

// ListForUser godoc
// @Summary Sanctions registered against a member
// @Tags Sanctions
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /sanctions/user/{userId} [get]
func (h *SanctionHandler) ListForUser(c *gin.Context) {
	sanctions, err := h.sanctions.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sanctions, nil)
}

// Mine godoc
// @Summary Sanctions against the authenticated member
// @Tags Sanctions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sanctions/mine [get]
func (h *SanctionHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	sanctions, err := h.sanctions.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sanctions, nil)
}

// Create godoc
// @Summary Register a sanction
// @Tags Sanctions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSanctionRequest true "Sanction payload"
// @Success 201 {object} response.Envelope
// @Router /sanctions [post]
func (h *SanctionHandler) Create(c *gin.Context) {
	var req service.CreateSanctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sanction, err := h.sanctions.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sanction)
}

// Settle godoc
// @Summary Mark a sanction as settled
// @Tags Sanctions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sanction ID"
// @Success 200 {object} response.Envelope
// @Router /sanctions/{id}/settle [patch]
func (h *SanctionHandler) Settle(c *gin.Context) {
	sanction, err := h.sanctions.Settle(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sanction, nil)
}

// Delete godoc
// @Summary Delete a sanction
// @Tags Sanctions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sanction ID"
// @Success 204 {object} response.Envelope
// @Router /sanctions/{id} [delete]
func (h *SanctionHandler) Delete(c *gin.Context) {
	if err := h.sanctions.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
