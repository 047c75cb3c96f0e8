package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/estate-marketplace/internal/interface/http"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
)

// ListingModule serves browsing, search and the builder dashboard. Detail
// pages resolve the caller when a session is presented.
type ListingModule struct {
	Handler *handlers.ListingHandler
	Authn   *middleware.Authenticator
}

func NewListingModule(h *handlers.ListingHandler, authn *middleware.Authenticator) *ListingModule {
	return &ListingModule{Handler: h, Authn: authn}
}

func (m *ListingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/listings", m.Handler.ByCategory)
	rg.GET("/listings/search", m.Handler.Search)
	rg.GET("/listings/:id", m.Authn.Optional(), m.Handler.View)

	rg.GET("/builder/dashboard", m.Authn.Required(), middleware.RequireBuilderDashboard(), m.Handler.Dashboard)
}
