package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/estate-marketplace/internal/interface/http"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
)

// AccountModule serves the caller's profile and subscriptions.
type AccountModule struct {
	Users *handlers.UserHandler
	Subs  *handlers.SubscriptionHandler
	Authn *middleware.Authenticator
}

func NewAccountModule(users *handlers.UserHandler, subs *handlers.SubscriptionHandler, authn *middleware.Authenticator) *AccountModule {
	return &AccountModule{Users: users, Subs: subs, Authn: authn}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rg.GET("/plans", m.Subs.Plans)

	auth := rg.Group("/")
	auth.Use(m.Authn.Required())
	{
		auth.GET("/me", m.Users.Me)
		auth.POST("/subscriptions", m.Subs.Subscribe)
		auth.POST("/subscriptions/builder", m.Subs.ActivateBuilder)
		auth.DELETE("/subscriptions/builder", middleware.RequireBuilderDashboard(), m.Subs.CancelBuilder)
	}
}
