package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// ConvenioHandler exposes partner business agreements.
type ConvenioHandler struct {
	convenios *service.ConvenioService
}

// NewConvenioHandler constructs ConvenioHandler.
func NewConvenioHandler(convenios *service.ConvenioService) *ConvenioHandler {
	return &ConvenioHandler{convenios: convenios}
}

// ListPublic godoc
// @Summary List active convenios
// @Tags Convenios
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /public/convenios [get]
func (h *ConvenioHandler) ListPublic(c *gin.Context) {
	convenios, err := h.convenios.List(c.Request.Context(), true, c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convenios, nil)
}

// List godoc
// @Summary List all convenios
// @Tags Convenios
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /convenios [get]
func (h *ConvenioHandler) List(c *gin.Context) {
	convenios, err := h.convenios.List(c.Request.Context(), false, c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convenios, nil)
}

// Get godoc
// @Summary Convenio detail
// @Tags Convenios
// @Produce json
// @Param id path string true "Convenio ID"
// @Success 200 {object} response.Envelope
// @Router /public/convenios/{id} [get]
func (h *ConvenioHandler) Get(c *gin.Context) {
	convenio, err := h.convenios.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convenio, nil)
}

// Create godoc
// @Summary Register a convenio
// @Tags Convenios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ConvenioRequest true "Convenio payload"
// @Success 201 {object} response.Envelope
// @Router /convenios [post]
func (h *ConvenioHandler) Create(c *gin.Context) {
	var req service.ConvenioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	convenio, err := h.convenios.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, convenio)
}

// Update godoc
// @Summary Edit a convenio
// @Tags Convenios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Convenio ID"
// @Param payload body service.ConvenioRequest true "Convenio payload"
// @Success 200 {object} response.Envelope
// @Router /convenios/{id} [put]
func (h *ConvenioHandler) Update(c *gin.Context) {
	var req service.ConvenioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	convenio, err := h.convenios.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convenio, nil)
}

// Delete godoc
// @Summary Delete a convenio
// @Tags Convenios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Convenio ID"
// @Success 204 {object} response.Envelope
// @Router /convenios/{id} [delete]
func (h *ConvenioHandler) Delete(c *gin.Context) {
	if err := h.convenios.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
