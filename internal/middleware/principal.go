package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
)

// ContextPrincipalKey is the gin context key storing the request principal.
const ContextPrincipalKey = "currentPrincipal"

// Principal derives the acting principal from the bearer token and stores it
// on the context. Absent or invalid credentials yield the guest principal
// rather than an error; route guards decide whether guests may proceed.
func Principal(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := models.Guest()

		header := c.GetHeader("Authorization")
		if header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				if claims, err := authService.ValidateToken(parts[1]); err == nil {
					p = claims.Principal()
				}
			}
		}

		p.IPAddress = c.ClientIP()
		p.UserAgent = c.Request.UserAgent()

		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// CurrentPrincipal returns the principal stored on the context, or the guest
// sentinel when the middleware did not run.
func CurrentPrincipal(c *gin.Context) models.Principal {
	if v, ok := c.Get(ContextPrincipalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Guest()
}
