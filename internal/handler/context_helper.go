package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/middleware"
	"github.com/salvaalejos/ceitm-web/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// careerScopeFromContext returns the career restriction set by the authorize
// middleware. Empty means unrestricted.
func careerScopeFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextScopeKey)
	if !exists {
		return ""
	}
	scope, ok := value.(string)
	if !ok {
		return ""
	}
	return scope
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func paginationMeta(page, size, total int) *models.Pagination {
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
