package server

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/dto"
	"github.com/credentix/credentix/email"
	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/generates"
	"github.com/credentix/credentix/keys"
	"github.com/credentix/credentix/store"
)

// Server provides the authorization server: the /oauth2 protocol
// endpoints, the OIDC discovery surface, and the password login API.
type Server struct {
	Config *Config

	clients store.ClientStore
	users   store.UserStore
	grants  store.GrantStore
	codec   *generates.JWTGenerate
	keys    *keys.Provider

	registry store.ClientRegistry
	notifier *Notifier
}

// errNoRegistry is returned by the admin API when no mutable client
// registry was configured.
var errNoRegistry = stderrors.New("client registry not configured")

// NewServer create authorization server
func NewServer(cfg *Config, clients store.ClientStore, users store.UserStore, grants store.GrantStore, codec *generates.JWTGenerate, kp *keys.Provider) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	s := &Server{
		Config:   cfg,
		clients:  clients,
		users:    users,
		grants:   grants,
		codec:    codec,
		keys:     kp,
		notifier: NewNotifier(email.NewNoOpSender()),
	}
	if reg, ok := clients.(store.ClientRegistry); ok {
		s.registry = reg
	}
	return s
}

// SetNotifier replaces the fire-and-forget event notifier.
func (s *Server) SetNotifier(n *Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// depContext bounds a dependency call per the configured timeout.
func (s *Server) depContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.Config.DependencyTimeout)
}

// oauthError writes the machine-readable JSON error body for err,
// using the taxonomy's status code and description. Unknown errors are
// reported as server_error without leaking internal detail.
func oauthError(c *gin.Context, err error) {
	code, ok := errors.StatusCodes[err]
	if !ok {
		log.Printf("server: unexpected error: %v", err)
		err = errors.ErrServerError
		code = http.StatusInternalServerError
	}
	c.JSON(code, dto.ErrorResponse{
		Error:       err.Error(),
		Description: errors.Descriptions[err],
	})
}

// dependencyError logs the underlying failure and surfaces it as
// temporarily_unavailable; internal detail never reaches the wire.
func dependencyError(c *gin.Context, op string, err error) {
	log.Printf("server: %s: dependency failure: %v", op, err)
	oauthError(c, errors.ErrServiceUnavailable)
}
