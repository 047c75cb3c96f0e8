package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

// PrincipalLookup resolves the caller without aborting the request.
type PrincipalLookup func(c *gin.Context) (*Principal, error)

// Maintenance answers 503 while enabled, except for admins and for paths
// starting with one of open. A nil lookup treats every caller as anonymous.
func Maintenance(enabled bool, lookup PrincipalLookup, open ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, prefix := range open {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if lookup != nil {
			if p, err := lookup(c); err == nil && p != nil && entity.IsAdmin(p.User.Role) {
				c.Next()
				return
			}
		}
		c.Header("Retry-After", "300")
		response.Abort(c, http.StatusServiceUnavailable, "down for maintenance", nil)
	}
}
