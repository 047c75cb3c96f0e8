package router

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Module is a feature that registers its routes on a RouterGroup.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// ModuleFunc adapts a plain function to Module.
type ModuleFunc func(rg *gin.RouterGroup)

func (f ModuleFunc) Register(rg *gin.RouterGroup) { f(rg) }

// Registry collects modules and applies them once. API modules mount under
// /api behind the shared middleware; root modules mount on the bare engine
// and skip it, which keeps probes such as /health outside maintenance gates.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	root        []Module
	once        sync.Once
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware for every API module.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) AddRoot(mod Module) {
	r.root = append(r.root, mod)
}

// RegisterAll mounts everything. Later calls do nothing.
func (r *Registry) RegisterAll() {
	r.once.Do(func() {
		for _, m := range r.root {
			m.Register(&r.Engine.RouterGroup)
		}
		if len(r.middlewares) > 0 {
			r.API.Use(r.middlewares...)
		}
		for _, m := range r.modules {
			m.Register(r.API)
		}
	})
}
