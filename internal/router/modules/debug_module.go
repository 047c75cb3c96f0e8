package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
)

// DebugModule exposes expvar counters to admins.
type DebugModule struct {
	Authn *middleware.Authenticator
}

func NewDebugModule(authn *middleware.Authenticator) *DebugModule { return &DebugModule{Authn: authn} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/admin/debug/vars", m.Authn.Required(), middleware.RequireAdmin(), gin.WrapH(expvar.Handler()))
}
