package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/estate-marketplace/internal/interface/http"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
)

// AuthModule serves sign-up, sign-in and session endpoints.
// Public: POST /auth/register, /auth/login, /auth/federated
// Protected: POST /auth/logout, GET /session, POST /session/refresh
type AuthModule struct {
	Handler *handlers.AuthHandler
	Authn   *middleware.Authenticator
	Redis   redis.Cmdable
	Limit   int
	Window  time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, authn *middleware.Authenticator, rdb redis.Cmdable, limit int, window time.Duration) *AuthModule {
	return &AuthModule{Handler: h, Authn: authn, Redis: rdb, Limit: limit, Window: window}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, m.Limit, m.Window, middleware.KeyByIPAndPath())

	rg.POST("/auth/register", limiter, m.Handler.Register)
	rg.POST("/auth/login", limiter, m.Handler.Login)
	rg.POST("/auth/federated", limiter, m.Handler.Federated)

	auth := rg.Group("/")
	auth.Use(m.Authn.Required())
	{
		auth.POST("/auth/logout", m.Handler.Logout)
		auth.GET("/session", m.Handler.Session)
		auth.POST("/session/refresh", m.Handler.Refresh)
	}
}
