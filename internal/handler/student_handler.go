package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// StudentHandler exposes the scholarship-holder registry.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// ListHolders godoc
// @Summary List scholarship holders
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param career query string false "Filter by career"
// @Param search query string false "Search by name or control number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) ListHolders(c *gin.Context) {
	page, size := pageParams(c)
	students, total, err := h.students.ListHolders(c.Request.Context(),
		c.Query("career"), strings.TrimSpace(c.Query("search")), page, size, careerScopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, paginationMeta(page, size, total))
}

// History godoc
// @Summary Application history of one student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param controlNumber path string true "Control number"
// @Success 200 {object} response.Envelope
// @Router /students/{controlNumber}/history [get]
func (h *StudentHandler) History(c *gin.Context) {
	history, err := h.students.History(c.Request.Context(), c.Param("controlNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// SetBlacklist godoc
// @Summary Toggle a student's blacklist flag
// @Description Blacklisted students cannot file applications
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param controlNumber path string true "Control number"
// @Param payload body object true "Blacklist payload"
// @Success 200 {object} response.Envelope
// @Router /students/{controlNumber}/blacklist [put]
func (h *StudentHandler) SetBlacklist(c *gin.Context) {
	var payload struct {
		Blacklisted bool `json:"blacklisted"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.SetBlacklist(c.Request.Context(), c.Param("controlNumber"), payload.Blacklisted, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
