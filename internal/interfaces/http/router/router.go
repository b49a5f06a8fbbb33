// Package router assembles the versioned API surface from handlers that
// know how to mount their own routes.
package router

import "github.com/gin-gonic/gin"

// RouteRegistrar is implemented by every handler that mounts routes under
// the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and group middleware, then mounts everything
// under /api/<version> in one Setup call. Middleware added here applies to
// API routes only, never to top-level routes such as /health.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	middleware []gin.HandlerFunc
}

// RouterOption configures the Router at construction time.
type RouterOption func(*Router)

// WithAPIVersion overrides the default "v1" path segment.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter wraps a gin engine. Routes are not mounted until Setup.
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar. Chainable.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Use queues middleware for the API group. Chainable.
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Setup mounts the API group, its middleware, and every queued registrar.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	api.Use(r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
