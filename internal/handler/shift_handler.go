package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// ShiftHandler exposes the weekly guard duty board.
type ShiftHandler struct {
	shifts *service.ShiftService
}

// NewShiftHandler constructs ShiftHandler.
func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// Week godoc
// @Summary Weekly guard duty board
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) Week(c *gin.Context) {
	shifts, err := h.shifts.Week(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, nil)
}

// Mine godoc
// @Summary Shifts held by the authenticated member
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /shifts/mine [get]
func (h *ShiftHandler) Mine(c *gin.Context) {
	shifts, err := h.shifts.Mine(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, nil)
}

// Assign godoc
// @Summary Take a guard duty slot
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignShiftRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Assign(c *gin.Context) {
	var req service.AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.shifts.Assign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// Release godoc
// @Summary Release a guard duty slot
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 204 {object} response.Envelope
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Release(c *gin.Context) {
	if err := h.shifts.Release(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
