package router

import "github.com/gin-gonic/gin"

// Module registers its routes on the group it is given.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules for the /api group and for the page routes at
// the root of the engine.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Web         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	webModules  []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), Web: engine.Group("")}
}

// Use adds middleware to the /api group only.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) AddWeb(mod Module) {
	r.webModules = append(r.webModules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.webModules {
		m.Register(r.Web)
	}
}
