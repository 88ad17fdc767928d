// Package dto defines the explicit request/response structures bound
// and validated at the HTTP boundary before any protocol logic runs.
package dto

// AuthorizeRequest are the query parameters of GET /oauth2/authorize.
type AuthorizeRequest struct {
	ResponseType string `form:"response_type" binding:"required"`
	ClientID     string `form:"client_id" binding:"required"`
	RedirectURI  string `form:"redirect_uri" binding:"required"`
	Scope        string `form:"scope"`
	State        string `form:"state"`
	Nonce        string `form:"nonce"`
}

// TokenRequest is the form body of POST /oauth2/token.
type TokenRequest struct {
	GrantType    string `form:"grant_type" binding:"required"`
	Code         string `form:"code"`
	ClientID     string `form:"client_id"`
	ClientSecret string `form:"client_secret"`
	RedirectURI  string `form:"redirect_uri"`
	RefreshToken string `form:"refresh_token"`
}

// TokenResponse is the successful token endpoint payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// IntrospectRequest is the JSON body of POST /oauth2/introspect.
type IntrospectRequest struct {
	Token         string `json:"token" binding:"required"`
	TokenTypeHint string `json:"token_type_hint"`
}

// IntrospectResponse follows RFC 7662: inactive tokens produce
// {"active": false} with no further claims and never an error status.
type IntrospectResponse struct {
	Active   bool   `json:"active"`
	Sub      string `json:"sub,omitempty"`
	Username string `json:"username,omitempty"`
	Tenant   string `json:"tenant,omitempty"`
	Role     string `json:"role,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Iat      int64  `json:"iat,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// UserInfoResponse is the canonical claim set served by /oauth2/userinfo.
type UserInfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
	Tenant        string `json:"tenant,omitempty"`
	Role          string `json:"role,omitempty"`
}

// ErrorResponse is the machine-readable error body every endpoint
// returns on failure.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}
