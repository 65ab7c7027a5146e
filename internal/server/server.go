// Package server exposes the business service over HTTP with gin.
// Errors are returned in the GraphQL error shape so existing clients of the
// resolver layer can parse them unchanged.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/internal/metrics"
	"github.com/zekoder/zegraphql/types"
)

// Request headers carrying the caller identity, set by the upstream gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderTenantID = "X-Tenant-ID"
	HeaderRoles    = "X-Roles"
)

// Options configures a Server
type Options struct {
	Mode         string // gin mode
	RolePrefix   string
	EnforceRoles bool
	ZeAuthURL    string

	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // Source of /metrics; nil disables the endpoint
}

// Server holds the HTTP handlers
type Server struct {
	service  *business.Service
	policies map[string]business.Access
	opts     Options
	logger   zerolog.Logger
}

// New creates a server over the service
func New(service *business.Service, opts Options) *Server {
	return &Server{
		service:  service,
		policies: business.AccessPolicies(opts.RolePrefix),
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	if s.opts.Mode != "" {
		gin.SetMode(s.opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/health", s.health)
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/:entity")
	api.POST("/query", s.authorize(business.ActionList), s.list)
	api.GET("/:id", s.authorize(business.ActionList), s.get)
	api.POST("", s.authorize(business.ActionCreate), s.create)
	api.PATCH("/:id", s.authorize(business.ActionUpdate), s.update)
	api.DELETE("/:id", s.authorize(business.ActionDelete), s.delete)
	api.POST("/upsert", s.authorizeRoles(business.Access.UpsertRoles), s.upsert)
	api.POST("/delete", s.authorize(business.ActionDelete), s.deleteMultiple)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authorize checks the caller's roles against the roles granting action
func (s *Server) authorize(action business.Action) gin.HandlerFunc {
	return s.authorizeRoles(func(a business.Access) []string {
		return a.Roles(action)
	})
}

func (s *Server) authorizeRoles(required func(business.Access) []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entity := c.Param("entity")
		access, ok := s.policies[entity]
		if !ok {
			s.fail(c, "authorize", business.ErrUnknownEntity)
			return
		}
		if !s.opts.EnforceRoles {
			c.Next()
			return
		}
		if !business.Intersects(required(access), rolesFrom(c.Request)) {
			abortWithError(c, http.StatusForbidden,
				newError("you do not have permission to access "+entity, CodeForbidden, c.FullPath()))
			return
		}
		c.Next()
	}
}

// meta builds the request identity handed to hooks
func (s *Server) meta(c *gin.Context) business.RequestMeta {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return business.RequestMeta{
		Actor:     actorFrom(c.Request),
		ZeAuthURL: s.opts.ZeAuthURL,
		SelfURL:   scheme + "://" + c.Request.Host,
	}
}

func actorFrom(r *http.Request) types.Actor {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	return types.Actor{
		UserID:   r.Header.Get(HeaderUserID),
		TenantID: r.Header.Get(HeaderTenantID),
		Token:    strings.TrimPrefix(token, "Bearer "),
	}
}

func rolesFrom(r *http.Request) []string {
	var roles []string
	for _, header := range r.Header.Values(HeaderRoles) {
		for _, role := range strings.Split(header, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
	}
	return roles
}
