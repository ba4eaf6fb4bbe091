package router

import (
	"net/http"

	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewEngine creates a gin engine with request ids, request logging and
// panic recovery. extra handlers run right after the request id is set.
func NewEngine(log *zap.Logger, mode string, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(mode)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(extra...)
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	return engine
}

// NewRouter creates a new Router instance
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

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Root mounts a handler outside the versioned API, e.g. /healthz
func (r *Router) Root(method, path string, h gin.HandlerFunc) *Router {
	r.engine.Handle(method, path, h)
	return r
}

// RootHandler mounts a plain net/http handler outside the versioned API
func (r *Router) RootHandler(method, path string, h http.Handler) *Router {
	return r.Root(method, path, gin.WrapH(h))
}

// Setup registers all routes with the engine
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
