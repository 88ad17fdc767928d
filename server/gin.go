package server

import (
	"github.com/gin-gonic/gin"
)

// NewGinEngine builds a Gin router and registers all routes.
func NewGinEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())

	// OAuth2 / OIDC protocol surface
	r.GET("/oauth2/authorize", s.HandleAuthorize)
	r.POST("/oauth2/token", s.HandleToken)
	r.GET("/oauth2/userinfo", s.HandleUserInfo)
	r.POST("/oauth2/introspect", s.HandleIntrospect)

	// OIDC discovery
	r.GET("/.well-known/openid-configuration", s.HandleOIDCDiscovery)
	r.GET("/.well-known/jwks.json", s.HandleOIDCJWKS)

	// Password login API
	auth := r.Group("/api/v1/auth")
	auth.POST("/login", s.HandleLogin)
	auth.POST("/refresh", s.HandleRefresh)
	auth.POST("/logout", s.HandleLogout)

	// Admin client registry, role gated
	admin := r.Group("/api/v1/admin", s.TokenMiddleware(), s.RequirePermission("manage:clients"))
	admin.POST("/clients", s.HandleClientUpsert)
	admin.GET("/clients/:id", s.HandleClientGet)
	admin.DELETE("/clients/:id", s.HandleClientDelete)

	return r
}
