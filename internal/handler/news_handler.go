package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/middleware"
	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// NewsHandler exposes the news feed.
type NewsHandler struct {
	news  *service.NewsService
	cache *service.CacheService
}

// NewNewsHandler constructs NewsHandler.
func NewNewsHandler(news *service.NewsService, cache *service.CacheService) *NewsHandler {
	return &NewsHandler{news: news, cache: cache}
}

type cachedNewsPage struct {
	Items []models.News `json:"items"`
	Total int           `json:"total"`
}

// ListPublic godoc
// @Summary List published articles
// @Tags News
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/news [get]
func (h *NewsHandler) ListPublic(c *gin.Context) {
	page, size := pageParams(c)
	key := fmt.Sprintf("news:published:%d:%d", page, size)

	var cached cachedNewsPage
	if hit, _ := h.cache.Get(c.Request.Context(), key, &cached); hit {
		middleware.SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, cached.Items, paginationMeta(page, size, cached.Total), middleware.ExtractMeta(c))
		return
	}

	items, total, err := h.news.List(c.Request.Context(), true, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Set(c.Request.Context(), key, cachedNewsPage{Items: items, Total: total}, 0)
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, items, paginationMeta(page, size, total), middleware.ExtractMeta(c))
}

// List godoc
// @Summary List all articles including drafts
// @Tags News
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /news [get]
func (h *NewsHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	items, total, err := h.news.List(c.Request.Context(), false, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, paginationMeta(page, size, total))
}

// GetBySlug godoc
// @Summary Get a published article by slug
// @Tags News
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} response.Envelope
// @Router /public/news/{slug} [get]
func (h *NewsHandler) GetBySlug(c *gin.Context) {
	item, err := h.news.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Search godoc
// @Summary Search published articles
// @Tags News
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} response.Envelope
// @Router /public/news/search [get]
func (h *NewsHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	items, err := h.news.Search(c.Request.Context(), term, 10)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Publish an article
// @Tags News
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.NewsRequest true "Article payload"
// @Success 201 {object} response.Envelope
// @Router /news [post]
func (h *NewsHandler) Create(c *gin.Context) {
	var req service.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.news.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "news:*")
	response.Created(c, item)
}

// Update godoc
// @Summary Edit an article
// @Tags News
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param payload body service.NewsRequest true "Article payload"
// @Success 200 {object} response.Envelope
// @Router /news/{id} [put]
func (h *NewsHandler) Update(c *gin.Context) {
	var req service.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.news.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "news:*")
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete an article
// @Tags News
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 204 {object} response.Envelope
// @Router /news/{id} [delete]
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.news.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	_ = h.cache.Invalidate(c.Request.Context(), "news:*")
	response.NoContent(c)
}
