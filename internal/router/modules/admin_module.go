package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/estate-marketplace/internal/interface/http"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
)

// AdminModule serves listing and user management. Every route requires the
// live role to be admin.
type AdminModule struct {
	Listings *handlers.ListingHandler
	Users    *handlers.UserHandler
	Authn    *middleware.Authenticator
	Redis    redis.Cmdable
}

func NewAdminModule(listings *handlers.ListingHandler, users *handlers.UserHandler, authn *middleware.Authenticator, rdb redis.Cmdable) *AdminModule {
	return &AdminModule{Listings: listings, Users: users, Authn: authn, Redis: rdb}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(
		m.Authn.Required(),
		middleware.RequireAdmin(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUser()),
	)
	{
		admin.POST("/listings", m.Listings.Create)
		admin.PUT("/listings/:id", m.Listings.Update)
		admin.DELETE("/listings/:id", m.Listings.Delete)

		admin.GET("/users", m.Users.List)
		admin.PUT("/users/:id/role", m.Users.ChangeRole)
	}
}
