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

const mapCacheKey = "map:buildings"

// MapHandler exposes the campus map directory.
type MapHandler struct {
	buildings *service.MapService
	cache     *service.CacheService
}

// NewMapHandler constructs MapHandler.
func NewMapHandler(buildings *service.MapService, cache *service.CacheService) *MapHandler {
	return &MapHandler{buildings: buildings, cache: cache}
}

// ListBuildings godoc
// @Summary List campus buildings
// @Tags Map
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/map/buildings [get]
func (h *MapHandler) ListBuildings(c *gin.Context) {
	var cached []models.Building
	if hit, _ := h.cache.Get(c.Request.Context(), mapCacheKey, &cached); hit {
		middleware.SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, cached, nil, middleware.ExtractMeta(c))
		return
	}

	buildings, err := h.buildings.ListBuildings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Set(c.Request.Context(), mapCacheKey, buildings, 0)
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, buildings, nil, middleware.ExtractMeta(c))
}

// GetBuilding godoc
// @Summary Building detail with rooms
// @Tags Map
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /public/map/buildings/{id} [get]
func (h *MapHandler) GetBuilding(c *gin.Context) {
	building, err := h.buildings.GetBuilding(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building, nil)
}

// Search godoc
// @Summary Search buildings and rooms
// @Tags Map
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} response.Envelope
// @Router /public/map/search [get]
func (h *MapHandler) Search(c *gin.Context) {
	results, err := h.buildings.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// CreateBuilding godoc
// @Summary Register a building
// @Tags Map
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 201 {object} response.Envelope
// @Router /map/buildings [post]
func (h *MapHandler) CreateBuilding(c *gin.Context) {
	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	building, err := h.buildings.CreateBuilding(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "map:*")
	response.Created(c, building)
}

// UpdateBuilding godoc
// @Summary Edit a building
// @Tags Map
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Building ID"
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 200 {object} response.Envelope
// @Router /map/buildings/{id} [put]
func (h *MapHandler) UpdateBuilding(c *gin.Context) {
	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	building, err := h.buildings.UpdateBuilding(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "map:*")
	response.JSON(c, http.StatusOK, building, nil)
}

// DeleteBuilding godoc
// @Summary Remove a building and its rooms
// @Tags Map
// @Produce json
// @Security BearerAuth
// @Param id path string true "Building ID"
// @Success 204 {object} response.Envelope
// @Router /map/buildings/{id} [delete]
func (h *MapHandler) DeleteBuilding(c *gin.Context) {
	if err := h.buildings.DeleteBuilding(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "map:*")
	response.NoContent(c)
}

// AddRoom godoc
// @Summary Register a room
// @Tags Map
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Building ID"
// @Param payload body service.RoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /map/buildings/{id}/rooms [post]
func (h *MapHandler) AddRoom(c *gin.Context) {
	var req service.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	room, err := h.buildings.AddRoom(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// DeleteRoom godoc
// @Summary Remove a room
// @Tags Map
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 204 {object} response.Envelope
// @Router /map/rooms/{roomId} [delete]
func (h *MapHandler) DeleteRoom(c *gin.Context) {
	if err := h.buildings.DeleteRoom(c.Request.Context(), c.Param("roomId"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
