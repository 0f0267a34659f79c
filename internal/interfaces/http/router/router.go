// Package router mounts handler route groups under the versioned API
// prefix.
package router

import (
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// RouteRegistrar is implemented by handlers that attach their routes to
// a shared router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects route registrars and mounts them on the engine
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a router over the given engine
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register queues a registrar for Setup. Returns the router so handler
// registration chains.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every registered handler under the API prefix
func (r *Router) Setup() {
	api := r.engine.Group(apiPrefix)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
