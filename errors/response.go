package errors

import "net/http"

// Descriptions error description
var Descriptions = map[error]string{
	ErrInvalidRequest:          "The request is missing a required parameter or is otherwise malformed",
	ErrInvalidClient:           "Client authentication failed",
	ErrInvalidRedirectURI:      "The redirect_uri is not registered for this client",
	ErrInvalidGrant:            "The provided authorization grant is invalid, expired, revoked, or was issued to another client",
	ErrInvalidScope:            "The requested scope is invalid, unknown, or malformed",
	ErrUnsupportedResponseType: "The authorization server does not support this response type",
	ErrUnsupportedGrantType:    "The authorization grant type is not supported by the authorization server",
	ErrAccessDenied:            "The resource owner or authorization server denied the request",
	ErrUnauthenticated:         "A valid resource owner session is required",
	ErrServerError:             "The authorization server encountered an unexpected condition",
	ErrServiceUnavailable:      "The authorization server is currently unable to handle the request",
}

// StatusCodes response error HTTP status code
var StatusCodes = map[error]int{
	ErrInvalidRequest:          http.StatusBadRequest,
	ErrInvalidClient:           http.StatusUnauthorized,
	ErrInvalidRedirectURI:      http.StatusBadRequest,
	ErrInvalidGrant:            http.StatusBadRequest,
	ErrInvalidScope:            http.StatusBadRequest,
	ErrUnsupportedResponseType: http.StatusBadRequest,
	ErrUnsupportedGrantType:    http.StatusBadRequest,
	ErrAccessDenied:            http.StatusForbidden,
	ErrUnauthenticated:         http.StatusUnauthorized,
	ErrServerError:             http.StatusInternalServerError,
	ErrServiceUnavailable:      http.StatusServiceUnavailable,
}
