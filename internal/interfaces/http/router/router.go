// Package router mounts the storefront handlers on a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers its routes under a versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects route registrars and mounts them under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
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

// Use adds middleware that runs for every API route
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// BasePath returns the versioned API prefix, e.g. /api/v1
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every registrar on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup is a named set of routes sharing a prefix and middleware
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []Route
	subgroups  []*DomainGroup
}

// Route is one method and path of a DomainGroup, relative to its prefix
type Route struct {
	Method   string
	Path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, Route{Method: method, Path: relativePath, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relativePath, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relativePath, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, relativePath, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, relativePath, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, relativePath, handlers)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.Method, route.Path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Routes lists every route of the group and its subgroups with full paths
// relative to the API base
func (dg *DomainGroup) Routes() []Route {
	var out []Route
	for _, route := range dg.routes {
		out = append(out, Route{Method: route.Method, Path: joinPaths(dg.prefix, route.Path)})
	}
	for _, subgroup := range dg.subgroups {
		for _, route := range subgroup.Routes() {
			out = append(out, Route{Method: route.Method, Path: joinPaths(dg.prefix, route.Path)})
		}
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// joinPaths joins like gin does, keeping a trailing slash of the last part
func joinPaths(base, relative string) string {
	if relative == "" {
		return base
	}
	joined := path.Join(base, relative)
	if relative[len(relative)-1] == '/' && joined[len(joined)-1] != '/' {
		return joined + "/"
	}
	return joined
}
