package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/models"
	"github.com/credentix/credentix/permission"
	"github.com/credentix/credentix/store"
)

// SetClientRegistry enables the admin client management API. Without a
// registry the admin routes answer 503.
func (s *Server) SetClientRegistry(r store.ClientRegistry) {
	s.registry = r
}

// RequirePermission gates a route on the caller's role grants. It runs
// after TokenMiddleware, which puts the role claim in the context.
func (s *Server) RequirePermission(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !permission.RoleAllowsString(role, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error:       "forbidden",
				Description: "role does not grant " + required,
			})
			return
		}
		c.Next()
	}
}

// HandleClientUpsert registers or updates an OAuth2 client. The secret
// is bcrypt hashed before it is stored; the plaintext is only ever
// held by the caller.
func (s *Server) HandleClientUpsert(c *gin.Context) {
	if s.registry == nil {
		dependencyError(c, "admin.client_upsert", errNoRegistry)
		return
	}
	var req dto.ClientUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Description: err.Error()})
		return
	}
	hash, err := models.HashClientSecret(req.Secret)
	if err != nil {
		dependencyError(c, "admin.client_upsert", err)
		return
	}
	cli := &models.Client{
		ID:           req.ClientID,
		Secret:       hash,
		Name:         req.Name,
		RedirectURIs: req.RedirectURIs,
		UserID:       c.GetString("user_id"),
	}
	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	if err := s.registry.Upsert(ctx, cli); err != nil {
		dependencyError(c, "admin.client_upsert", err)
		return
	}
	c.JSON(http.StatusOK, dto.ClientResponse{
		ClientID:     cli.ID,
		Name:         cli.Name,
		RedirectURIs: cli.RedirectURIs,
		CreatedBy:    cli.UserID,
	})
}

// HandleClientGet returns the admin view of a registered client.
func (s *Server) HandleClientGet(c *gin.Context) {
	if s.registry == nil {
		dependencyError(c, "admin.client_get", errNoRegistry)
		return
	}
	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	cli, err := s.registry.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == store.ErrClientNotFound {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Description: "unknown client"})
			return
		}
		dependencyError(c, "admin.client_get", err)
		return
	}
	c.JSON(http.StatusOK, dto.ClientResponse{
		ClientID:     cli.ID,
		Name:         cli.Name,
		RedirectURIs: cli.RedirectURIs,
		CreatedBy:    cli.UserID,
	})
}

// HandleClientDelete removes a client registration. Outstanding codes
// for the client die at redemption, when the registry lookup fails.
func (s *Server) HandleClientDelete(c *gin.Context) {
	if s.registry == nil {
		dependencyError(c, "admin.client_delete", errNoRegistry)
		return
	}
	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	if err := s.registry.Delete(ctx, c.Param("id")); err != nil {
		dependencyError(c, "admin.client_delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
