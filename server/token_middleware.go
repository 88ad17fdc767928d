package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/models"
)

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), parts[1] != ""
}

// authenticatedUser resolves the resource owner behind the request,
// from a bearer access token first and the browser session second.
// The claims only index the user; the record is loaded fresh.
func (s *Server) authenticatedUser(c *gin.Context) (*models.User, error) {
	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()

	if token, ok := bearerToken(c); ok {
		claims, err := s.codec.ParseAccessToken(token)
		if err != nil {
			return nil, err
		}
		return s.users.GetByID(ctx, claims.Subject)
	}

	if uid, ok := s.sessionUserID(c); ok {
		return s.users.GetByID(ctx, uid)
	}
	return nil, errors.ErrUnauthenticated
}

// TokenMiddleware validates the bearer token and sets user identity in
// the gin context for downstream handlers.
func (s *Server) TokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:       "unauthorized",
				Description: "missing or malformed authorization header",
			})
			return
		}
		claims, err := s.codec.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:       "unauthorized",
				Description: "invalid or expired access token",
			})
			return
		}
		c.Set("user_id", claims.Subject)
		c.Set("email", claims.Email)
		c.Set("tenant", claims.Tenant)
		c.Set("role", claims.Role)
		c.Next()
	}
}
