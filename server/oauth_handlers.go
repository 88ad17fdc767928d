package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/generates"
	"github.com/credentix/credentix/models"
	"github.com/credentix/credentix/store"
)

// HandleAuthorize implements GET /oauth2/authorize. Every failure is a
// JSON error, never an error redirect: the redirect target is not
// trusted until the client and redirect_uri have been validated, and
// once they have been we still prefer the JSON body over leaking error
// codes to the callback.
func (s *Server) HandleAuthorize(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		oauthError(c, errors.ErrInvalidRequest)
		return
	}

	// The resource owner must already be authenticated; redirecting an
	// anonymous caller anywhere would bypass that check.
	user, err := s.authenticatedUser(c)
	if err != nil {
		oauthError(c, errors.ErrUnauthenticated)
		return
	}

	if !s.Config.CheckResponseType(req.ResponseType) {
		oauthError(c, errors.ErrUnsupportedResponseType)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()

	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		if err == store.ErrClientNotFound {
			oauthError(c, errors.ErrInvalidClient)
			return
		}
		dependencyError(c, "authorize: client lookup", err)
		return
	}
	if !client.AllowsRedirectURI(req.RedirectURI) {
		oauthError(c, errors.ErrInvalidRedirectURI)
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = s.Config.DefaultScope
	}
	code, err := s.grants.Issue(ctx, client.ID, user.ID, req.RedirectURI, scope)
	if err != nil {
		dependencyError(c, "authorize: issue code", err)
		return
	}

	// redirect_uri has been validated against the registered set; state
	// round-trips verbatim for the client's CSRF check.
	target, err := url.Parse(req.RedirectURI)
	if err != nil {
		oauthError(c, errors.ErrInvalidRedirectURI)
		return
	}
	q := target.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// HandleToken implements POST /oauth2/token.
func (s *Server) HandleToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		oauthError(c, errors.ErrInvalidRequest)
		return
	}
	if !s.Config.CheckGrantType(req.GrantType) {
		oauthError(c, errors.ErrUnsupportedGrantType)
		return
	}

	switch req.GrantType {
	case "authorization_code":
		s.handleAuthorizationCodeGrant(c, &req)
	case "refresh_token":
		s.handleRefreshTokenGrant(c, &req)
	default:
		oauthError(c, errors.ErrUnsupportedGrantType)
	}
}

func (s *Server) handleAuthorizationCodeGrant(c *gin.Context, req *dto.TokenRequest) {
	if req.Code == "" || req.ClientID == "" || req.ClientSecret == "" || req.RedirectURI == "" {
		oauthError(c, errors.ErrInvalidRequest)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()

	// Client validation runs to completion before redemption: redeeming
	// is destructive and must not consume a code on behalf of a request
	// that will fail client checks anyway.
	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		if err == store.ErrClientNotFound {
			oauthError(c, errors.ErrInvalidClient)
			return
		}
		dependencyError(c, "token: client lookup", err)
		return
	}
	if !client.VerifySecret(req.ClientSecret) {
		oauthError(c, errors.ErrInvalidClient)
		return
	}
	if !client.AllowsRedirectURI(req.RedirectURI) {
		oauthError(c, errors.ErrInvalidRedirectURI)
		return
	}

	grant, err := s.grants.Redeem(ctx, req.Code)
	if err != nil {
		if err == store.ErrGrantNotFound {
			oauthError(c, errors.ErrInvalidGrant)
			return
		}
		dependencyError(c, "token: redeem code", err)
		return
	}

	// The code is consumed at this point regardless of the outcome of
	// the cross-check below; a mismatched request burns the code.
	if grant.ClientID != req.ClientID || grant.RedirectURI != req.RedirectURI {
		oauthError(c, errors.ErrInvalidGrant)
		return
	}

	user, err := s.users.GetByID(ctx, grant.UserID)
	if err != nil {
		if err == store.ErrUserNotFound {
			oauthError(c, errors.ErrInvalidGrant)
			return
		}
		dependencyError(c, "token: user load", err)
		return
	}

	s.issueTokenTriple(c, user, client.ID, grant.Scope)
}

func (s *Server) handleRefreshTokenGrant(c *gin.Context, req *dto.TokenRequest) {
	if req.RefreshToken == "" {
		oauthError(c, errors.ErrInvalidRequest)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()

	// Confidential clients authenticate on refresh as well.
	if req.ClientID != "" {
		client, err := s.clients.GetByID(ctx, req.ClientID)
		if err != nil {
			if err == store.ErrClientNotFound {
				oauthError(c, errors.ErrInvalidClient)
				return
			}
			dependencyError(c, "token: client lookup", err)
			return
		}
		if !client.VerifySecret(req.ClientSecret) {
			oauthError(c, errors.ErrInvalidClient)
			return
		}
	}

	claims, err := s.codec.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		oauthError(c, errors.ErrInvalidGrant)
		return
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if err == store.ErrUserNotFound {
			oauthError(c, errors.ErrInvalidGrant)
			return
		}
		dependencyError(c, "token: user load", err)
		return
	}

	// Single-slot check: only the most recently issued refresh token is
	// redeemable. An older token that still verifies cryptographically
	// fails here.
	if user.RefreshToken == nil || *user.RefreshToken != req.RefreshToken {
		oauthError(c, errors.ErrInvalidGrant)
		return
	}

	s.issueTokenPair(c, user)
}

// issueTokenTriple mints access/refresh/ID tokens, overwrites the
// user's refresh slot, and writes the token response.
func (s *Server) issueTokenTriple(c *gin.Context, user *models.User, clientID, scope string) {
	accessToken, err := s.codec.AccessToken(user)
	if err != nil {
		oauthError(c, errors.ErrServerError)
		return
	}
	refreshToken, err := s.codec.RefreshToken(user)
	if err != nil {
		oauthError(c, errors.ErrServerError)
		return
	}
	idToken, err := s.codec.IDToken(user, clientID, "")
	if err != nil {
		oauthError(c, errors.ErrServerError)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		dependencyError(c, "token: persist refresh token", err)
		return
	}

	s.notifier.Emit(Event{Type: EventTokenIssued, UserID: user.ID, Email: user.Email, ClientID: clientID})

	writeTokenJSON(c, dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IDToken:      idToken,
		TokenType:    s.Config.TokenType,
		ExpiresIn:    int64(generates.AccessTokenExp.Seconds()),
		Scope:        scope,
	})
}

// issueTokenPair mints an access/refresh pair (no ID token) and rotates
// the refresh slot. Used by the refresh grant and the login API.
func (s *Server) issueTokenPair(c *gin.Context, user *models.User) {
	accessToken, err := s.codec.AccessToken(user)
	if err != nil {
		oauthError(c, errors.ErrServerError)
		return
	}
	refreshToken, err := s.codec.RefreshToken(user)
	if err != nil {
		oauthError(c, errors.ErrServerError)
		return
	}

	ctx, cancel := s.depContext(c.Request.Context())
	defer cancel()
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		dependencyError(c, "token: persist refresh token", err)
		return
	}

	writeTokenJSON(c, dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    s.Config.TokenType,
		ExpiresIn:    int64(generates.AccessTokenExp.Seconds()),
	})
}

func writeTokenJSON(c *gin.Context, resp dto.TokenResponse) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, resp)
}
