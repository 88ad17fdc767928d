package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/store"
)

// HandleOIDCDiscovery serves the OpenID Provider Metadata.
func (s *Server) HandleOIDCDiscovery(c *gin.Context) {
	issuer := s.Config.Issuer
	c.JSON(http.StatusOK, gin.H{
		"issuer":                                issuer,
		"authorization_endpoint":                issuer + "/oauth2/authorize",
		"token_endpoint":                        issuer + "/oauth2/token",
		"userinfo_endpoint":                     issuer + "/oauth2/userinfo",
		"introspection_endpoint":                issuer + "/oauth2/introspect",
		"jwks_uri":                              issuer + "/.well-known/jwks.json",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code", "refresh_token"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post"},
		"scopes_supported":                      []string{"openid", "email", "profile"},
		"claims_supported":                      []string{"sub", "email", "email_verified", "name"},
	})
}

// HandleOIDCJWKS serves the public JWKS derived from the RSA key. The
// single static key carries a fixed kid so resource servers can cache
// it.
func (s *Server) HandleOIDCJWKS(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keys": []map[string]interface{}{s.keys.JWK()},
	})
}

// HandleUserInfo serves the canonical claim set for a valid bearer
// access token. The token claims are used only as an index; the user is
// loaded fresh from the store.
func (s *Server) HandleUserInfo(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:       "unauthorized",
			Description: "access token is required",
		})
		return
	}
	claims, err := s.codec.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:       "unauthorized",
			Description: "invalid or expired access token",
		})
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if err == store.ErrUserNotFound {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:       "unauthorized",
				Description: "user no longer exists",
			})
			return
		}
		dependencyError(c, "userinfo: user load", err)
		return
	}

	c.JSON(http.StatusOK, dto.UserInfoResponse{
		Sub:           user.ID,
		Email:         user.Email,
		Name:          user.FullName,
		EmailVerified: user.EmailVerified,
		Tenant:        user.TenantName,
		Role:          user.RoleName,
	})
}

// HandleIntrospect implements RFC 7662. Verification failures are not
// errors: an expired, malformed, or badly signed token yields a 200
// with {"active": false}.
func (s *Server) HandleIntrospect(c *gin.Context) {
	var req dto.IntrospectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		oauthError(c, errors.ErrInvalidRequest)
		return
	}

	claims, err := s.codec.ParseAccessToken(req.Token)
	if err != nil {
		c.JSON(http.StatusOK, dto.IntrospectResponse{Active: false})
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		c.JSON(http.StatusOK, dto.IntrospectResponse{Active: false})
		return
	}

	c.JSON(http.StatusOK, dto.IntrospectResponse{
		Active:   true,
		Sub:      user.ID,
		Username: user.Email,
		Tenant:   user.TenantName,
		Role:     user.RoleName,
		Exp:      claims.ExpiresAt.Unix(),
		Iat:      claims.IssuedAt.Unix(),
		Scope:    s.Config.DefaultScope,
	})
}
