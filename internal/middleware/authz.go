package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/salvaalejos/ceitm-web/internal/authz"
	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// ContextScopeKey is the gin context key storing the caller's career scope.
// Empty means unrestricted.
const ContextScopeKey = "careerScope"

// Authorize gates a route on the central permission table. When the decision
// is career-scoped, the career is stored on the context for the handler.
func Authorize(resource authz.Resource, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		decision := authz.Can(claims, resource, action)
		if !decision.Allow {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(ContextScopeKey, authz.CareerScope(claims, decision))
		c.Next()
	}
}
