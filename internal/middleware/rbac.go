package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/models"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
	"github.com/campuskit/academy-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Guests get a
// 401; authenticated principals with a disallowed role get a 403.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p.IsGuest() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
