package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/response"
)

// ContextAdminKey is the gin context key storing validated admin claims.
const ContextAdminKey = "currentAdmin"

type tokenValidator interface {
	Validate(tokenString string) (*models.AdminClaims, error)
}

// AdminAuth requires a bearer token carrying the admin role. When enabled is
// false every request passes through untouched.
func AdminAuth(tokens tokenValidator, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// AdminFromContext returns the admin claims set by AdminAuth, if any.
func AdminFromContext(c *gin.Context) *models.AdminClaims {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.AdminClaims)
	return claims
}
