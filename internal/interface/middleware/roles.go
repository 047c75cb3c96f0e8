package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

// RequireRole lets the request through when allow accepts the caller's live
// role. It must run after Authenticator.Required.
func RequireRole(allow func(entity.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if !allow(u.Role) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(entity.IsAdmin) }

func RequireBuilderDashboard() gin.HandlerFunc {
	return RequireRole(entity.CanAccessBuilderDashboard)
}
