package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/geoip"
	"github.com/credentix/credentix/store"
)

// HandleLogin authenticates a user by email and password and issues an
// access/refresh pair, overwriting the refresh slot.
func (s *Server) HandleLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:       "invalid_request",
			Description: "email and password are required",
		})
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == store.ErrUserNotFound {
			// Same answer as a bad password; login must not reveal
			// which of the two failed.
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:       "invalid_grant",
				Description: "invalid email or password",
			})
			return
		}
		dependencyError(c, "login: user load", err)
		return
	}
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:       "invalid_grant",
			Description: "invalid email or password",
		})
		return
	}

	s.establishSession(c, user.ID)
	s.notifier.Emit(Event{Type: EventLogin, UserID: user.ID, Email: user.Email, IP: geoip.ClientIP(c.Request)})
	s.issueTokenPair(c, user)
}

// HandleRefresh rotates the token pair for a presented refresh token.
// Delegates to the same single-slot check as the refresh_token grant.
func (s *Server) HandleRefresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:       "invalid_request",
			Description: "refresh_token is required",
		})
		return
	}
	s.handleRefreshTokenGrant(c, &dto.TokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: req.RefreshToken,
	})
}

// HandleLogout clears the user's refresh slot and drops the browser
// session, invalidating all future refresh attempts. Already-issued
// access tokens stay valid until their own expiry.
func (s *Server) HandleLogout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		oauthError(c, errors.ErrUnauthenticated)
		return
	}
	claims, err := s.codec.ParseAccessToken(token)
	if err != nil {
		oauthError(c, errors.ErrUnauthenticated)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	if err := s.users.ClearRefreshToken(ctx, claims.Subject); err != nil && err != store.ErrUserNotFound {
		dependencyError(c, "logout: clear refresh token", err)
		return
	}
	s.destroySession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
