package errors

import "errors"

// New returns an error that formats as the given text.
var New = errors.New

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// Protocol-level errors surfaced to OAuth2 clients with a stable
// machine-readable code.
var (
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidRedirectURI      = errors.New("invalid_redirect_uri")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrAccessDenied            = errors.New("access_denied")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrServerError             = errors.New("server_error")
	ErrServiceUnavailable      = errors.New("temporarily_unavailable")
)

// Token verification errors. These never reach the wire directly; the
// introspection handler maps them to {active:false} and everything else
// maps them to 401.
var (
	ErrMalformedToken      = errors.New("malformed token")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrExpiredAccessToken  = errors.New("expired access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("expired refresh token")
)
